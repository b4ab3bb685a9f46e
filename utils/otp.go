package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTPCode returns a uniformly random 6-digit code in
// [100000, 999999].
func GenerateOTPCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand failing means the platform RNG is broken; there is no
		// acceptable fallback for a credential.
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}
