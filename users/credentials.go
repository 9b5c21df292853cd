package users

import (
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"
)

const credentialCharset = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"!@#$%^&*-_=+"

// GenerateCredential returns a random credential of the given length. Used
// for accounts created through external login, where the credential is
// hashed and discarded without ever being shown to anyone.
func GenerateCredential(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("credential length must be positive")
	}
	max := big.NewInt(int64(len(credentialCharset)))
	credential := make([]byte, length)
	for i := range credential {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "GenerateCredential rand.Int")
		}
		credential[i] = credentialCharset[n.Int64()]
	}
	return string(credential), nil
}
