package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJson_LoadsFileFromFlag(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	dir := t.TempDir()
	path := filepath.Join(dir, "server.json")
	data := `{
		"endpoint_addr_http": ":7070",
		"database_dsn": "postgres://json:json@db:5432/estately",
		"secret_key": "json-secret",
		"jwt_issuer": "json-issuer",
		"jwt_audience": "json-audience",
		"access_token_validity_duration": "45m",
		"refresh_token_validity_duration": "96h",
		"s3_bucket": "json-bucket"
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	os.Args = []string{"estately", "-c", path}

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":7070", c.EndpointAddrHTTP)
	assert.Equal(t, "postgres://json:json@db:5432/estately", c.DatabaseDSN)
	assert.Equal(t, "json-secret", c.SecretKey)
	assert.Equal(t, "json-issuer", c.JWTIssuer)
	assert.Equal(t, "json-audience", c.JWTAudience)
	assert.Equal(t, 45*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 96*time.Hour, c.RefreshTokenValidityDuration)
	assert.Equal(t, "json-bucket", c.S3Bucket)
}

func TestParseJson_NoFlagIsNoop(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	os.Args = []string{"estately"}

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, "secretKey", c.SecretKey)
}
