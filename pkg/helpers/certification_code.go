package helpers

import "github.com/google/uuid"

// CodeGenerator produces opaque certification codes.
type CodeGenerator interface {
	Generate() string
}

// CertificationCodeGenerator returns random (v4) UUID strings.
type CertificationCodeGenerator struct{}

func (CertificationCodeGenerator) Generate() string {
	return uuid.NewString()
}
