package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alejandrodnm/polydrop/internal/domain"
)

// JSON implementa ports.Reporter escribiendo el batch como un array JSON.
type JSON struct {
	out io.Writer
}

// NewJSON crea un reporter JSON sobre stdout.
func NewJSON() *JSON {
	return &JSON{out: os.Stdout}
}

// NewJSONWriter crea un reporter JSON sobre un writer arbitrario.
func NewJSONWriter(w io.Writer) *JSON {
	return &JSON{out: w}
}

func (j *JSON) Report(_ context.Context, results []domain.EligibilityResult) error {
	if results == nil {
		results = []domain.EligibilityResult{}
	}
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("notify.JSON.Report: %w", err)
	}
	return nil
}
