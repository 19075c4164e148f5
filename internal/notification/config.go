package notification

import (
	"errors"
	"fmt"
)

// SMTPConfig holds connection parameters for the SMTP provider.
type SMTPConfig struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	FromAddr   string `json:"from_address"`
	Encryption string `json:"encryption"` // "none", "starttls", "ssl_tls"
}

// Validate reports whether the configuration is usable for sending.
func (c SMTPConfig) Validate() error {
	if c.Host == "" {
		return errors.New("smtp host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("smtp port %d out of range", c.Port)
	}
	if c.FromAddr == "" {
		return errors.New("smtp from address is required")
	}
	switch c.Encryption {
	case "", "none", "starttls", "ssl_tls":
	default:
		return fmt.Errorf("unknown smtp encryption %q", c.Encryption)
	}
	return nil
}
