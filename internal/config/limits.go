package config

const (
	// MaxNoteTitleLength is the maximum length for note titles.
	// Titles render as single-line headings in note lists.
	MaxNoteTitleLength = 255

	// MaxNoteContentLength is the maximum length for note bodies.
	// Well under the 10MB request body cap applied by httputil.ParseJSON.
	MaxNoteContentLength = 100_000

	// MaxEmailLength bounds login input before it reaches the database.
	MaxEmailLength = 320

	// MaxPasswordLength matches bcrypt's 72-byte input ceiling.
	MaxPasswordLength = 72

	// MaxSlugLength is the maximum length for tenant slugs.
	MaxSlugLength = 63

	// MinJWTSecretLength is the minimum HS256 secret size accepted in prod.
	MinJWTSecretLength = 32
)
