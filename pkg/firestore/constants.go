package firestore

const (
	pathClaims       = "claims"
	pathTranslations = "translations"
	pathUsers        = "users"
	pathUserEmails   = "user-emails"
)

const (
	fieldCreatedAt  = "created_at"
	fieldUpdatedAt  = "updated_at"
	fieldUsageCount = "usage_count"
)

// maxGetAll bounds a single batched document read
const maxGetAll = 100
