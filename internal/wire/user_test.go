package wire

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrimitra/agrimitra-auth/internal/model"
)

func sampleProfile() model.UserProfile {
	return model.UserProfile{
		ID:         uuid.New(),
		Email:      "919876500000@agrimitra.local",
		Name:       "Asha",
		Phone:      "+919876500000",
		Location:   "Pune",
		LandSize:   "2.5 acres",
		Experience: "5 years",
		Language:   "mr",
		Crops:      []string{"rice", "wheat"},
		Avatar:     "https://cdn.example.net/a.jpg",
		AgriCreds:  40,
		JoinDate:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFromProfile_AliasesCarryEqualValues(t *testing.T) {
	u := FromProfile(sampleProfile())

	data, err := json.Marshal(u)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	aliases := [][2]string{
		{"landSize", "land_size"},
		{"avatar", "avatar_url"},
		{"agriCreds", "agri_creds"},
		{"joinDate", "join_date"},
	}
	for _, pair := range aliases {
		camel, ok := fields[pair[0]]
		require.True(t, ok, pair[0])
		snake, ok := fields[pair[1]]
		require.True(t, ok, pair[1])
		assert.Equal(t, camel, snake, "%s and %s must match", pair[0], pair[1])
	}
}

func TestUser_Roundtrip(t *testing.T) {
	profile := sampleProfile()

	got, err := FromProfile(profile).ToProfile()
	require.NoError(t, err)
	assert.Equal(t, profile, got)
}

func TestToProfile_SnakeCaseOnly(t *testing.T) {
	// Documents produced by the hosted backend's row shape carry only the
	// snake_case spellings.
	id := uuid.New()
	raw := `{
		"id": "` + id.String() + `",
		"email": "a@b.c",
		"land_size": "1 acre",
		"avatar_url": "https://cdn.example.net/b.png",
		"agri_creds": 7,
		"join_date": "2025-06-01T12:00:00Z"
	}`

	var u User
	require.NoError(t, json.Unmarshal([]byte(raw), &u))

	profile, err := u.ToProfile()
	require.NoError(t, err)
	assert.Equal(t, "1 acre", profile.LandSize)
	assert.Equal(t, "https://cdn.example.net/b.png", profile.Avatar)
	assert.Equal(t, 7, profile.AgriCreds)
	assert.Equal(t, 2025, profile.JoinDate.Year())
}

func TestToProfile_BadID(t *testing.T) {
	_, err := User{ID: "nope"}.ToProfile()
	require.Error(t, err)
}
