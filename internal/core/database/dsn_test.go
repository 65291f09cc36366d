package db

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDsnWithRootCert(t *testing.T) {
	dsn, err := dsnWithRootCert("postgres://u:p@db.example.com:5432/app?pool_max_conns=5", "/etc/ssl/ca.pem")
	require.NoError(t, err)

	parsed, err := url.Parse(dsn)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "verify-ca", q.Get("sslmode"))
	assert.Equal(t, "/etc/ssl/ca.pem", q.Get("sslrootcert"))
	assert.Equal(t, "5", q.Get("pool_max_conns"), "existing parameters must survive")
}

func TestDsnWithRootCertRejectsMalformedURL(t *testing.T) {
	_, err := dsnWithRootCert("postgres://u:p@db.example.com:5432/app\x00", "/etc/ssl/ca.pem")
	assert.Error(t, err)
}
