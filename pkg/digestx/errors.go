package digestx

import "github.com/Abraxas-365/flowx/pkg/errx"

var digestErrors = errx.NewRegistry("DIGESTX")

var (
	ErrSerialize = digestErrors.Register("SERIALIZE", errx.TypeValidation, "Argument cannot be serialized for digesting")
)
