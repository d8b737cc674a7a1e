package fideauth

import (
	"context"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

// findSubjectByEmailAndPrefix scans the full directory for the entry whose
// email matches and whose id starts with ref. The administrative API exposes
// no lookup-by-prefix, so a full-collection scan is the contract here; first
// match wins when prefixes collide. Acceptable at small tenant scale only.
func findSubjectByEmailAndPrefix(ctx context.Context, dir Directory, email, ref string) (*Subject, error) {
	subjects, err := dir.ListSubjects(ctx)
	if err != nil {
		return nil, wrapDirectoryErr(err)
	}

	for i := range subjects {
		if subjects[i].Email == email && strings.HasPrefix(subjects[i].ID, ref) {
			return &subjects[i], nil
		}
	}

	return nil, ErrSubjectNotFound
}

// findSubjectByEmail scans the full directory for an exact email match.
func findSubjectByEmail(ctx context.Context, dir Directory, email string) (*Subject, error) {
	subjects, err := dir.ListSubjects(ctx)
	if err != nil {
		return nil, wrapDirectoryErr(err)
	}

	for i := range subjects {
		if subjects[i].Email == email {
			return &subjects[i], nil
		}
	}

	return nil, ErrSubjectNotFound
}

func wrapDirectoryErr(err error) error {
	return goerrors.Wrap(err, ErrDirectoryUnavailable.Category, ErrDirectoryUnavailable.Message).
		WithTextCode(ErrDirectoryUnavailable.TextCode)
}

// MemoryDirectory is an in-process Directory used in development and tests.
// Passwords are stored bcrypt-hashed, mirroring what a real provider does
// with privileged password updates.
type MemoryDirectory struct {
	mu        sync.RWMutex
	subjects  []Subject
	passwords map[string]string
}

// NewMemoryDirectory returns an empty directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{passwords: map[string]string{}}
}

// AddSubject registers a subject. Ordering is preserved; scans resolve
// duplicate emails and prefixes to the earliest entry.
func (d *MemoryDirectory) AddSubject(s Subject) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subjects = append(d.subjects, s)
}

func (d *MemoryDirectory) ListSubjects(ctx context.Context) ([]Subject, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Subject, len(d.subjects))
	copy(out, d.subjects)
	return out, nil
}

func (d *MemoryDirectory) ConfirmEmail(ctx context.Context, subjectID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.subjects {
		if d.subjects[i].ID == subjectID {
			d.subjects[i].EmailConfirmed = true
			return nil
		}
	}

	return ErrSubjectNotFound
}

func (d *MemoryDirectory) SetPassword(ctx context.Context, subjectID, newPassword string) error {
	hash, err := HashPassword(newPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.subjects {
		if d.subjects[i].ID == subjectID {
			d.passwords[subjectID] = hash
			return nil
		}
	}

	return ErrSubjectNotFound
}

// VerifyPassword checks a cleartext password against the stored hash.
func (d *MemoryDirectory) VerifyPassword(subjectID, password string) error {
	d.mu.RLock()
	hash, ok := d.passwords[subjectID]
	d.mu.RUnlock()

	if !ok {
		return ErrSubjectNotFound
	}

	return ComparePasswordAndHash(password, hash)
}
