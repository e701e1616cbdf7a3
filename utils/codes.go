package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// VerificationCodeTTL es la vigencia del código de verificación
// que se genera al aprobar una solicitud.
const VerificationCodeTTL = 15 * time.Minute

// GenerateVerificationCode genera un código numérico de 6 dígitos
// con crypto/rand.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// HashVerificationCode calcula el hash salteado del código.
func HashVerificationCode(code string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckVerificationCode compara un código en claro contra su hash.
func CheckVerificationCode(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
