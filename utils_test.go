package filevault_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayoubd/filevault"
)

func basic(credentials string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}

func TestParseBasicCredentials(t *testing.T) {
	tt := []struct {
		Name          string
		Authorization string
		WantEmail     string
		WantPassword  string
		WantErr       bool
	}{
		{Name: "valid", Authorization: basic("bob@dylan.com:toto1234!"), WantEmail: "bob@dylan.com", WantPassword: "toto1234!"},
		{Name: "scheme is case insensitive", Authorization: "basic " + base64.StdEncoding.EncodeToString([]byte("a@b.c:pw")), WantEmail: "a@b.c", WantPassword: "pw"},
		{Name: "password may contain colons", Authorization: basic("a@b.c:p:w:d"), WantEmail: "a@b.c", WantPassword: "p:w:d"},
		{Name: "empty password", Authorization: basic("a@b.c:"), WantEmail: "a@b.c", WantPassword: ""},
		{Name: "empty value", Authorization: "", WantErr: true},
		{Name: "wrong scheme", Authorization: "Bearer abc123", WantErr: true},
		{Name: "no scheme", Authorization: base64.StdEncoding.EncodeToString([]byte("a@b.c:pw")), WantErr: true},
		{Name: "not base64", Authorization: "Basic !!!not-base64!!!", WantErr: true},
		{Name: "no colon separator", Authorization: "Basic " + base64.StdEncoding.EncodeToString([]byte("a@b.c")), WantErr: true},
		{Name: "empty email", Authorization: basic(":pw"), WantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			email, password, err := filevault.ParseBasicCredentials(tc.Authorization)
			if tc.WantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, filevault.ErrBadRequest)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.WantEmail, email)
			assert.Equal(t, tc.WantPassword, password)
		})
	}
}

func TestHashPassword(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		encoded, err := filevault.HashPassword("toto1234!")
		assert.NoError(t, err)
		assert.True(t, filevault.VerifyPassword("toto1234!", encoded))
		assert.False(t, filevault.VerifyPassword("wrong", encoded))
	})

	t.Run("plain text never stored", func(t *testing.T) {
		encoded, err := filevault.HashPassword("toto1234!")
		assert.NoError(t, err)
		assert.NotContains(t, encoded, "toto1234!")
	})

	t.Run("salted - same password hashes differently", func(t *testing.T) {
		first, err := filevault.HashPassword("toto1234!")
		assert.NoError(t, err)
		second, err := filevault.HashPassword("toto1234!")
		assert.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("encoded shape", func(t *testing.T) {
		encoded, err := filevault.HashPassword("pw")
		assert.NoError(t, err)

		saltHex, keyHex, found := strings.Cut(encoded, "$")
		assert.True(t, found)
		assert.Len(t, saltHex, 32)
		assert.Len(t, keyHex, 64)
	})
}

func TestVerifyPassword_Malformed(t *testing.T) {
	tt := []struct {
		Name    string
		Encoded string
	}{
		{Name: "empty", Encoded: ""},
		{Name: "no separator", Encoded: "deadbeef"},
		{Name: "salt not hex", Encoded: "zz$deadbeef"},
		{Name: "key not hex", Encoded: "deadbeef$zz"},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			assert.False(t, filevault.VerifyPassword("pw", tc.Encoded))
		})
	}
}
