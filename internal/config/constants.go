package config

const (
	DefaultDatabasePath = "./smartlearn.db"
	DefaultStorageDir   = "./objects"

	// Placeholders keep startup non-fatal when provider config is absent;
	// remote calls made with them fail at call time.
	PlaceholderAPIKey        = "placeholder"
	PlaceholderPublicBaseURL = "https://placeholder.invalid/storage"
)
