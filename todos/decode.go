package todos

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"todo-api/todos/domain"
)

const maxBodyBytes = 1 << 20

// decodeCandidate lê um único objeto JSON do body. Campo desconhecido, tipo
// errado, lixo depois do objeto e body grande demais viram domain.ErrInvalid.
func decodeCandidate(w http.ResponseWriter, r *http.Request) (domain.Candidate, error) {
	var c domain.Candidate

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return domain.Candidate{}, fmt.Errorf("%w: decode body: %v", domain.ErrInvalid, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.Candidate{}, fmt.Errorf("%w: body must hold a single JSON object", domain.ErrInvalid)
	}
	return c, nil
}
