package infra

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"todo-api/todos/domain"
)

// LoadSeedFile lê um array JSON de todos e confere contra o schema.
// Ids repetidos (comparados já aparados, como no Append) são recusados.
func LoadSeedFile(path string, schema *domain.Schema) ([]domain.Todo, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var todos []domain.Todo
	if err := json.Unmarshal(b, &todos); err != nil {
		return nil, fmt.Errorf("seed json unmarshal: %w", err)
	}
	if err := schema.ValidateTodos(todos); err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	seen := make(map[string]struct{}, len(todos))
	for _, t := range todos {
		if _, ok := seen[t.ID]; ok {
			return nil, fmt.Errorf("seed file %s: id %q: %w", path, t.ID, domain.ErrDuplicateID)
		}
		seen[t.ID] = struct{}{}
	}
	return todos, nil
}

// WriteSeedFile grava todos como array JSON indentado. Um arquivo existente
// só é sobrescrito com overwrite.
func WriteSeedFile(path string, todos []domain.Todo, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("seed file %s: %w", path, os.ErrExist)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat seed file: %w", err)
		}
	}
	b, err := json.MarshalIndent(todos, "", "  ")
	if err != nil {
		return fmt.Errorf("seed json marshal: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write seed file: %w", err)
	}
	return nil
}
