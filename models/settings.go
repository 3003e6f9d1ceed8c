package models

import "time"

// Setting keys stored in the settings table.
const (
	SettingSessionTTLDays        = "app_user_session_ttl_days"
	SettingSessionCap            = "app_user_session_cap"
	SettingLockMaxFailures       = "app_user_lock_max_failures"
	SettingLockWindowMinutes     = "app_user_lock_window_minutes"
	SettingLockDurationMinutes   = "app_user_lock_duration_minutes"
	SettingIPMaxFailures         = "app_user_ip_max_failures"
	SettingIPWindowMinutes       = "app_user_ip_window_minutes"
	SettingIPLockDurationMinutes = "app_user_ip_lock_duration_minutes"
	SettingTelemetryGraceDays    = "app_user_telemetry_grace_days"
)

// Settings is the typed view over the runtime key/value settings. Every field
// has a baked-in default that applies when the key is absent or invalid.
type Settings struct {
	SessionTTLDays        int `json:"sessionTtlDays"`
	SessionCap            int `json:"sessionCap"`
	LockMaxFailures       int `json:"lockMaxFailures"`
	LockWindowMinutes     int `json:"lockWindowMinutes"`
	LockDurationMinutes   int `json:"lockDurationMinutes"`
	IPMaxFailures         int `json:"ipMaxFailures"`
	IPWindowMinutes       int `json:"ipWindowMinutes"`
	IPLockDurationMinutes int `json:"ipLockDurationMinutes"`
	TelemetryGraceDays    int `json:"telemetryGraceDays"`
}

// DefaultSettings returns the values used when nothing is stored.
func DefaultSettings() Settings {
	return Settings{
		SessionTTLDays:        3,
		SessionCap:            3,
		LockMaxFailures:       5,
		LockWindowMinutes:     5,
		LockDurationMinutes:   10,
		IPMaxFailures:         20,
		IPWindowMinutes:       15,
		IPLockDurationMinutes: 30,
		TelemetryGraceDays:    2,
	}
}

func (s Settings) SessionTTL() time.Duration {
	return time.Duration(s.SessionTTLDays) * 24 * time.Hour
}

func (s Settings) LockWindow() time.Duration {
	return time.Duration(s.LockWindowMinutes) * time.Minute
}

func (s Settings) LockDuration() time.Duration {
	return time.Duration(s.LockDurationMinutes) * time.Minute
}

func (s Settings) IPWindow() time.Duration {
	return time.Duration(s.IPWindowMinutes) * time.Minute
}

func (s Settings) IPLockDuration() time.Duration {
	return time.Duration(s.IPLockDurationMinutes) * time.Minute
}

func (s Settings) TelemetryGrace() time.Duration {
	return time.Duration(s.TelemetryGraceDays) * 24 * time.Hour
}

// SettingsUpdate is a partial update; nil fields are left untouched.
type SettingsUpdate struct {
	SessionTTLDays        *int `json:"sessionTtlDays,omitempty"`
	SessionCap            *int `json:"sessionCap,omitempty"`
	LockMaxFailures       *int `json:"lockMaxFailures,omitempty"`
	LockWindowMinutes     *int `json:"lockWindowMinutes,omitempty"`
	LockDurationMinutes   *int `json:"lockDurationMinutes,omitempty"`
	IPMaxFailures         *int `json:"ipMaxFailures,omitempty"`
	IPWindowMinutes       *int `json:"ipWindowMinutes,omitempty"`
	IPLockDurationMinutes *int `json:"ipLockDurationMinutes,omitempty"`
	TelemetryGraceDays    *int `json:"telemetryGraceDays,omitempty"`
}

// Pairs returns the stored key for every non-nil field.
func (u SettingsUpdate) Pairs() map[string]int {
	pairs := make(map[string]int)
	add := func(key string, v *int) {
		if v != nil {
			pairs[key] = *v
		}
	}
	add(SettingSessionTTLDays, u.SessionTTLDays)
	add(SettingSessionCap, u.SessionCap)
	add(SettingLockMaxFailures, u.LockMaxFailures)
	add(SettingLockWindowMinutes, u.LockWindowMinutes)
	add(SettingLockDurationMinutes, u.LockDurationMinutes)
	add(SettingIPMaxFailures, u.IPMaxFailures)
	add(SettingIPWindowMinutes, u.IPWindowMinutes)
	add(SettingIPLockDurationMinutes, u.IPLockDurationMinutes)
	add(SettingTelemetryGraceDays, u.TelemetryGraceDays)
	return pairs
}
