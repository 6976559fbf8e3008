package credential

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Service identifies one supported external provider
type Service string

const (
	ServiceCanva     Service = "canva"
	ServiceMailchimp Service = "mailchimp"
	ServiceNotion    Service = "notion"
	ServiceGithub    Service = "github"
	ServiceOpenai    Service = "openai"
)

// Services lists every supported provider in display order
var Services = []Service{ServiceCanva, ServiceMailchimp, ServiceNotion, ServiceGithub, ServiceOpenai}

// ParseService validates a raw service name from a request path
func ParseService(raw string) (Service, error) {
	for _, s := range Services {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown service '%s'", raw)
}

// Metadata keys shared between the connect flows and the integration clients
const (
	MetaServerPrefix = "server_prefix"
	MetaAudienceID   = "audience_id"
	MetaRefreshToken = "refresh_token"
	MetaExpiresAt    = "expires_at"
	MetaDatabaseID   = "database_id"
	MetaOwner        = "owner"
	MetaRepo         = "repo"
	MetaBaseURL      = "base_url"
	MetaModel        = "model"
)

// Metadata is the service-specific key/value document attached to a
// credential, stored as a JSON column
type Metadata map[string]string

// Value implements driver.Valuer for database serialization
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database deserialization
func (m *Metadata) Scan(value any) error {
	if value == nil {
		*m = Metadata{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Metadata", value)
	}

	if len(raw) == 0 {
		*m = Metadata{}
		return nil
	}

	return json.Unmarshal(raw, m)
}

// Public returns a copy of the metadata with secret-adjacent keys removed,
// safe to hand back in status responses
func (m Metadata) Public() map[string]string {
	public := make(map[string]string, len(m))
	for k, v := range m {
		if k == MetaRefreshToken {
			continue
		}
		public[k] = v
	}
	return public
}

// Credential represents the stored secret and metadata authorizing calls to
// one external service on behalf of one user. Secret is encrypted at rest;
// decryption happens at the token manager boundary
type Credential struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`

	UserID   string   `json:"user_id" gorm:"column:user_id;size:36;not null;uniqueIndex:idx_user_service"`
	Service  Service  `json:"service" gorm:"column:service;size:32;not null;uniqueIndex:idx_user_service"`
	Secret   string   `json:"-" gorm:"column:secret;type:text;not null"`
	Metadata Metadata `json:"metadata" gorm:"column:metadata;type:json"`
}

// TableName overrides the default GORM table name
func (Credential) TableName() string {
	return "credentials"
}
