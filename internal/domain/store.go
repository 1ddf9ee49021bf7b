package domain

import "time"

// StoreCredential is the platform access credential for one (shop, app) pair.
// Uninstall keeps the record for history but invalidates the credential.
type StoreCredential struct {
	Shop        string    `json:"shop" dynamodbav:"shop"`
	App         string    `json:"app" dynamodbav:"app"`
	AccessToken string    `json:"access_token" dynamodbav:"access_token"`
	Uninstalled bool      `json:"uninstalled" dynamodbav:"uninstalled"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Valid reports whether the credential can be used for platform API calls.
func (c *StoreCredential) Valid() bool {
	return c != nil && !c.Uninstalled && c.AccessToken != ""
}
