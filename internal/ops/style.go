package ops

import (
	"fmt"

	"github.com/hpungsan/quip/internal/errors"
	"github.com/hpungsan/quip/internal/style"
)

// PickStyleInput contains parameters for the PickStyle operation.
type PickStyleInput struct {
	Index  int  `json:"index"`
	Length *int `json:"length,omitempty"` // bucket by caption length instead of index
}

// PickStyleOutput contains the result of the PickStyle operation.
type PickStyleOutput struct {
	Index  int                 `json:"index"`
	Style  style.ComedianStyle `json:"style"`
	Bucket style.LengthBucket  `json:"bucket"`
}

// PickStyle deterministically selects a comedian style and length bucket.
func PickStyle(input PickStyleInput) (*PickStyleOutput, error) {
	bucket := style.Bucket(input.Index)
	if input.Length != nil {
		b, ok := style.BucketFor(*input.Length)
		if !ok {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("length %d is outside every length bucket", *input.Length))
		}
		bucket = b
	}

	return &PickStyleOutput{
		Index:  input.Index,
		Style:  style.Pick(input.Index),
		Bucket: bucket,
	}, nil
}
