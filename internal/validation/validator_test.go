package validation

import (
	"context"
	"net/http/httptest"
	"testing"

	"salonbook/internal/api"
	"salonbook/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeValidatorAgainstMemoryServer(t *testing.T) {
	server := api.NewServer(&config.Config{
		GinMode:    "test",
		AdminToken: "smoke-admin",
		Store:      config.StoreMemory,
	})
	ts := httptest.NewServer(server.GetRouter())
	defer ts.Close()

	require.NoError(t, NewSmokeValidator(ts.URL, "smoke-admin").ValidateAll(context.Background()))
}

func TestSmokeValidatorWrongToken(t *testing.T) {
	server := api.NewServer(&config.Config{
		GinMode:    "test",
		AdminToken: "smoke-admin",
		Store:      config.StoreMemory,
	})
	ts := httptest.NewServer(server.GetRouter())
	defer ts.Close()

	err := NewSmokeValidator(ts.URL, "wrong").ValidateAll(context.Background())
	assert.ErrorContains(t, err, "create service")
}
