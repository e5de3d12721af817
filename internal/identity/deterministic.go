package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

func DocumentUUID(path string) uuid.UUID {
	return UUID("go-sitegen:document:" + strings.TrimSpace(path))
}

func LayoutSetUUID(setPath string) uuid.UUID {
	return UUID("go-sitegen:layout_set:" + strings.TrimSpace(setPath))
}

func LayoutUUID(setID uuid.UUID, name string) uuid.UUID {
	return UUID("go-sitegen:layout:" + setID.String() + ":" + strings.ToLower(strings.TrimSpace(name)))
}

func TagUUID(slug string) uuid.UUID {
	return UUID("go-sitegen:tag:" + strings.ToLower(strings.TrimSpace(slug)))
}

func BuildUUID(outputDir, stamp string) uuid.UUID {
	return UUID("go-sitegen:build:" + strings.TrimSpace(outputDir) + ":" + strings.TrimSpace(stamp))
}
