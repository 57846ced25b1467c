package postgres

import (
	"strings"
	"testing"

	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
)

func TestTutorListKey(t *testing.T) {
	subject := "Mathematics"
	a := repositories.TutorFilters{Subject: &subject, Limit: 20}
	b := repositories.TutorFilters{Subject: &subject, Limit: 20}
	c := repositories.TutorFilters{Subject: &subject, Limit: 20, Offset: 20}

	if tutorListKey(a) != tutorListKey(b) {
		t.Error("equal filters must map to the same cache key")
	}
	if tutorListKey(a) == tutorListKey(c) {
		t.Error("different pages must map to different cache keys")
	}

	// Keys must live under the pattern the profile writes evict
	if !strings.HasPrefix(tutorListKey(a), "list:") {
		t.Errorf("unexpected key %q", tutorListKey(a))
	}
}
