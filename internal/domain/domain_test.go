package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampRoundTripUsesZuluLayout(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 15, 0, time.FixedZone("CET", 3600))

	formatted := FormatTimestamp(at)
	assert.Equal(t, "2026-03-01T08:30:15Z", formatted)

	parsed, ok := ParseTimestamp(formatted)
	require.True(t, ok)
	assert.True(t, parsed.Equal(at))
}

func TestParseTimestampAcceptsRFC3339Variants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{name: "zulu", raw: "2026-03-01T08:30:15Z", ok: true},
		{name: "offset", raw: "2026-03-01T09:30:15+01:00", ok: true},
		{name: "fractional", raw: "2026-03-01T08:30:15.123456Z", ok: true},
		{name: "empty", raw: "", ok: false},
		{name: "garbage", raw: "yesterday", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseTimestamp(tt.raw)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestFormatTimestampZeroIsEmpty(t *testing.T) {
	assert.Equal(t, "", FormatTimestamp(time.Time{}))
}

func TestIsStale(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, IsStale(now.Add(-60*time.Second), now, 120*time.Second))
	assert.False(t, IsStale(now.Add(-120*time.Second), now, 120*time.Second))
	assert.True(t, IsStale(now.Add(-121*time.Second), now, 120*time.Second))
	assert.True(t, IsStale(time.Time{}, now, time.Hour))
}

func TestClaimStaleAfterWidensTimeout(t *testing.T) {
	assert.Equal(t, 300*time.Second, ClaimStaleAfter(120*time.Second))
}

func TestProjectConfigDefaults(t *testing.T) {
	cfg := ProjectConfig{Roles: map[RoleSlug]Role{"developer": {}}}

	assert.Equal(t, 120*time.Second, cfg.HeartbeatTimeout())
	assert.Equal(t, 7*24*time.Hour, cfg.Retention())
	assert.Equal(t, 1, cfg.Roles["developer"].Capacity())

	zero := 0
	cfg.Settings.MessageRetentionDays = &zero
	assert.Equal(t, time.Duration(0), cfg.Retention())
}

func TestProjectConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProjectConfig
		wantErr string
	}{
		{name: "valid", cfg: ProjectConfig{Roles: map[RoleSlug]Role{"developer": {}}}},
		{name: "no roles", cfg: ProjectConfig{}, wantErr: "roster has no roles"},
		{name: "colon in slug", cfg: ProjectConfig{Roles: map[RoleSlug]Role{"dev:0": {}}}, wantErr: "invalid role slug"},
		{name: "reserved slug", cfg: ProjectConfig{Roles: map[RoleSlug]Role{"all": {}}}, wantErr: "reserved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrConfigInvalid)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestRoleCanBroadcast(t *testing.T) {
	assert.True(t, Role{Permissions: []Capability{CapabilityBroadcast}}.CanBroadcast())
	assert.True(t, Role{Permissions: []Capability{CapabilityAssignTasks}}.CanBroadcast())
	assert.False(t, Role{Permissions: []Capability{"write_code"}}.CanBroadcast())
}

func TestUnknownRoleLookup(t *testing.T) {
	cfg := ProjectConfig{Roles: map[RoleSlug]Role{"developer": {}}}

	_, err := cfg.Role("designer")
	assert.ErrorIs(t, err, ErrUnknownRole)
}
