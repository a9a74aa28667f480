package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration extends time.Duration with a leading days component ("7d", "1d12h")
type Duration struct {
	time.Duration
}

// EnvDecode implements envconfig.Decoder
func (d *Duration) EnvDecode(ctx context.Context, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}

	var days time.Duration
	if idx := strings.Index(v, "d"); idx >= 0 {
		n, err := strconv.Atoi(v[:idx])
		if err != nil || n < 0 {
			return fmt.Errorf("invalid days value %q", v)
		}
		days = time.Duration(n) * 24 * time.Hour
		v = v[idx+1:]
		if v == "" {
			d.Duration = days
			return nil
		}
	}

	rest, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	d.Duration = days + rest
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	return d.EnvDecode(context.Background(), string(text))
}

func (d Duration) String() string {
	return d.Duration.String()
}
