package casdoor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
)

// Property keys carried on the Casdoor user record. The marketplace role and
// tutor pipeline status live here so role changes survive without a separate
// user table.
const (
	propertyRole        = "marketplace_role"
	propertyTutorStatus = "tutor_status"
)

// CasdoorConfig holds the configuration for Casdoor connection
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

type UserCasdoor struct {
	client *casdoorsdk.Client
	redis  *redis.Client
	config CasdoorConfig

	// Cache settings
	cachePrefix string
	cacheTTL    time.Duration
}

func NewUserCasdoor(config CasdoorConfig, redisClient *redis.Client) repositories.UserRepository {
	client := casdoorsdk.NewClient(
		config.Endpoint,
		config.ClientID,
		config.ClientSecret,
		config.Certificate,
		config.OrganizationName,
		config.ApplicationName,
	)

	return &UserCasdoor{
		client:      client,
		redis:       redisClient,
		config:      config,
		cachePrefix: "user:",
		cacheTTL:    15 * time.Minute,
	}
}

// ===== CACHE METHODS =====

func (u *UserCasdoor) getCacheKey(key string) string {
	return fmt.Sprintf("%s%s", u.cachePrefix, key)
}

func (u *UserCasdoor) getUserFromCache(ctx context.Context, key string) (*models.User, error) {
	if u.redis == nil {
		return nil, nil // Cache not available
	}

	data, err := u.redis.Get(ctx, u.getCacheKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Not found in cache
		}
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached user: %w", err)
	}

	return &user, nil
}

func (u *UserCasdoor) setUserCache(ctx context.Context, key string, user *models.User) error {
	if u.redis == nil {
		return nil // Cache not available
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user for cache: %w", err)
	}

	return u.redis.Set(ctx, u.getCacheKey(key), data, u.cacheTTL).Err()
}

func (u *UserCasdoor) invalidateUserCache(ctx context.Context, user *models.User) {
	if u.redis == nil || user == nil {
		return
	}
	u.redis.Del(ctx, u.getCacheKey(fmt.Sprintf("id:%s", user.ID)))
}

// ===== CONVERSION METHODS =====

// convertCasdoorUserToModel converts a Casdoor user to the internal model
func (u *UserCasdoor) convertCasdoorUserToModel(casdoorUser *casdoorsdk.User) *models.User {
	if casdoorUser == nil {
		return nil
	}

	var createdAt, updatedAt time.Time
	if casdoorUser.CreatedTime != "" {
		createdAt, _ = time.Parse(time.RFC3339, casdoorUser.CreatedTime)
	}
	if casdoorUser.UpdatedTime != "" {
		updatedAt, _ = time.Parse(time.RFC3339, casdoorUser.UpdatedTime)
	}

	var phone *string
	if casdoorUser.Phone != "" {
		phone = &casdoorUser.Phone
	}

	return &models.User{
		ID:            casdoorUser.Id,
		FullName:      casdoorUser.DisplayName,
		Email:         casdoorUser.Email,
		Phone:         phone,
		Role:          u.resolveRole(casdoorUser),
		TutorStatus:   models.TutorStatus(u.getPropertyOrDefault(casdoorUser.Properties, propertyTutorStatus, "")),
		AvatarURL:     &casdoorUser.Avatar,
		EmailVerified: casdoorUser.EmailVerified,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
}

// resolveRole determines the marketplace role. The marketplace_role property
// wins because approvals write it; the Casdoor role list is the fallback for
// users provisioned outside this service.
func (u *UserCasdoor) resolveRole(casdoorUser *casdoorsdk.User) models.UserRole {
	if casdoorUser.IsAdmin {
		return models.RoleAdmin
	}

	if prop := u.getPropertyOrDefault(casdoorUser.Properties, propertyRole, ""); prop != "" {
		return u.mapSingleCasdoorRoleToUserRole(prop)
	}

	for _, casdoorRole := range casdoorUser.Roles {
		if mapped := u.mapSingleCasdoorRoleToUserRole(casdoorRole.Name); mapped != models.RoleStudent {
			return mapped
		}
	}

	return models.RoleStudent // Default role
}

func (u *UserCasdoor) mapSingleCasdoorRoleToUserRole(casdoorType string) models.UserRole {
	switch strings.ToLower(casdoorType) {
	case "student":
		return models.RoleStudent
	case "tutor_applicant", "applicant":
		return models.RoleTutorApplicant
	case "tutor", "teacher":
		return models.RoleTutor
	case "admin", "administrator":
		return models.RoleAdmin
	default:
		return models.RoleStudent // Default role
	}
}

// getPropertyOrDefault gets property value or returns default
func (u *UserCasdoor) getPropertyOrDefault(properties map[string]string, key, defaultValue string) string {
	if value, exists := properties[key]; exists {
		return value
	}
	return defaultValue
}

// ===== BASIC READ OPERATIONS =====

// GetByID retrieves a user by ID
func (u *UserCasdoor) GetByID(ctx context.Context, id string) (*models.User, error) {
	cacheKey := fmt.Sprintf("id:%s", id)
	if cachedUser, err := u.getUserFromCache(ctx, cacheKey); err == nil && cachedUser != nil {
		return cachedUser, nil
	}

	casdoorUser, err := u.client.GetUserByUserId(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Casdoor: %w", err)
	}
	if casdoorUser == nil {
		return nil, fmt.Errorf("user not found with ID %s", id)
	}

	user := u.convertCasdoorUserToModel(casdoorUser)
	if user == nil {
		return nil, fmt.Errorf("failed to convert Casdoor user")
	}

	u.setUserCache(ctx, cacheKey, user)

	return user, nil
}

// GetByIDs retrieves multiple users by their IDs
func (u *UserCasdoor) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}

	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		user, err := u.GetByID(ctx, id)
		if err == nil && user != nil {
			users = append(users, user)
		}
		// Continue even if individual user fetch fails
	}

	return users, nil
}

// ===== WRITE OPERATIONS =====

// UpdateRole sets the user's marketplace role on the Casdoor record
func (u *UserCasdoor) UpdateRole(ctx context.Context, id string, role models.UserRole) error {
	return u.updateProperty(ctx, id, propertyRole, string(role))
}

// UpdateTutorStatus mirrors the application pipeline status onto the user
func (u *UserCasdoor) UpdateTutorStatus(ctx context.Context, id string, status models.TutorStatus) error {
	return u.updateProperty(ctx, id, propertyTutorStatus, string(status))
}

func (u *UserCasdoor) updateProperty(ctx context.Context, id, key, value string) error {
	casdoorUser, err := u.client.GetUserByUserId(id)
	if err != nil {
		return fmt.Errorf("failed to get user from Casdoor: %w", err)
	}
	if casdoorUser == nil {
		return fmt.Errorf("user not found with ID %s", id)
	}

	if casdoorUser.Properties == nil {
		casdoorUser.Properties = make(map[string]string)
	}
	casdoorUser.Properties[key] = value

	ok, err := u.client.UpdateUser(casdoorUser)
	if err != nil {
		return fmt.Errorf("failed to update user in Casdoor: %w", err)
	}
	if !ok {
		return fmt.Errorf("Casdoor rejected update for user %s", id)
	}

	u.invalidateUserCache(ctx, u.convertCasdoorUserToModel(casdoorUser))

	return nil
}

// ===== LIST AND SEARCH OPERATIONS =====

// List retrieves a paginated list of users with optional filters
func (u *UserCasdoor) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	if filters.Limit <= 0 {
		filters.Limit = 10
	}
	if filters.Limit > 100 {
		filters.Limit = 100
	}

	// Casdoor uses 1-indexed pages
	page := (filters.Offset / filters.Limit) + 1
	if page < 1 {
		page = 1
	}

	queryMap := make(map[string]string)
	if filters.Query != "" {
		queryMap["field"] = "email"
		queryMap["value"] = filters.Query
	}

	casdoorUsers, count, err := u.client.GetPaginationUsers(page, filters.Limit, queryMap)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get users from Casdoor: %w", err)
	}

	users := make([]*models.User, 0, len(casdoorUsers))
	for _, casdoorUser := range casdoorUsers {
		user := u.convertCasdoorUserToModel(casdoorUser)
		if user == nil {
			continue
		}
		if filters.Role != nil && user.Role != *filters.Role {
			continue
		}
		users = append(users, user)

		u.setUserCache(ctx, fmt.Sprintf("id:%s", user.ID), user)
	}

	return users, int64(count), nil
}
