package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aliskhannn/hafiz-bot/internal/domain/entities"
	"github.com/aliskhannn/hafiz-bot/internal/storage"
)

// DefaultStudentsKey is the key holding the student collection.
const DefaultStudentsKey = "students_data"

// StudentRepository stores the whole student collection as one JSON array under one key.
type StudentRepository struct {
	gateway storage.Gateway
	key     string
}

// NewStudentRepository creates a repository over gateway. An empty key means DefaultStudentsKey.
func NewStudentRepository(gateway storage.Gateway, key string) *StudentRepository {
	if key == "" {
		key = DefaultStudentsKey
	}
	return &StudentRepository{gateway: gateway, key: key}
}

// Load reads the collection. An absent key yields an empty collection.
// Records written before the progress log existed get an empty log.
func (r *StudentRepository) Load(ctx context.Context) ([]*entities.Student, error) {
	data, err := r.gateway.Get(ctx, r.key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []*entities.Student{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load students: %w", err)
	}

	students, err := DecodeStudents(data)
	if err != nil {
		return nil, fmt.Errorf("load students: %w", err)
	}
	return students, nil
}

// Save overwrites the stored collection.
func (r *StudentRepository) Save(ctx context.Context, students []*entities.Student) error {
	data, err := EncodeStudents(students)
	if err != nil {
		return fmt.Errorf("save students: %w", err)
	}

	if err := r.gateway.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("save students: %w", err)
	}
	return nil
}

// Clear removes the stored collection.
func (r *StudentRepository) Clear(ctx context.Context) error {
	if err := r.gateway.Remove(ctx, r.key); err != nil {
		return fmt.Errorf("clear students: %w", err)
	}
	return nil
}

// EncodeStudents serializes a collection in the stored format.
func EncodeStudents(students []*entities.Student) ([]byte, error) {
	if students == nil {
		students = []*entities.Student{}
	}

	data, err := json.Marshal(students)
	if err != nil {
		return nil, fmt.Errorf("marshal students: %w", err)
	}
	return data, nil
}

// DecodeStudents parses a stored collection and repairs missing progress logs.
func DecodeStudents(data []byte) ([]*entities.Student, error) {
	var students []*entities.Student
	if err := json.Unmarshal(data, &students); err != nil {
		return nil, fmt.Errorf("unmarshal students: %w", err)
	}

	out := make([]*entities.Student, 0, len(students))
	for _, s := range students {
		if s == nil {
			continue
		}
		if s.DailyProgress == nil {
			s.DailyProgress = []entities.DailyProgress{}
		}
		out = append(out, s)
	}

	return out, nil
}
