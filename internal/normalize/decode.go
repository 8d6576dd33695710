package normalize

import (
	"github.com/go-viper/mapstructure/v2"

	"torgmailru/client/internal/apierrors"
)

// Decode copies node into target (a pointer to a struct, map or slice).
// Struct fields are matched by their `json` tag against canonical keys, numbers
// and strings convert weakly, and unknown keys are ignored.
func (n Node) Decode(target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return apierrors.NewDecodeError("build decoder", err)
	}

	if err := decoder.Decode(n.Export()); err != nil {
		return apierrors.NewDecodeError("decode normalized node", err)
	}
	return nil
}
