package membership

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Mutator is the membership-management collaborator the scripts
// delegate to. *Manager satisfies it.
type Mutator interface {
	AddSocietyAdmin(ctx context.Context, member *Member, society *Society) error
	RemoveSocietyAdmin(ctx context.Context, member *Member, society *Society) error
	DeleteSociety(ctx context.Context, society *Society) error
}

// Prompter handles the interactive parts of a script run: advisory
// warnings and the confirmation gate. Confirm returns an error when the
// operator declines, which aborts the script with no side effect.
type Prompter interface {
	Confirm(prompt string) error
	Warnf(format string, args ...any)
}

// Scripts are the operator entry points for group account maintenance.
// Warnings are advisory only; the confirmation prompt is the sole gate
// before any mutation.
type Scripts struct {
	mutator Mutator
	prompt  Prompter
	logger  zerolog.Logger
}

// NewScripts creates the script set.
func NewScripts(mutator Mutator, prompt Prompter, logger zerolog.Logger) *Scripts {
	return &Scripts{
		mutator: mutator,
		prompt:  prompt,
		logger:  logger.With().Str("component", "membership-scripts").Logger(),
	}
}

// GrantAdmin adds a member to a society's admins. Warns if the member
// already holds admin.
func (s *Scripts) GrantAdmin(ctx context.Context, member *Member, society *Society) error {
	if society.IsAdmin(member.CRSID) {
		s.prompt.Warnf("Warning: %s is already an admin of %s", member.CRSID, society.Name)
	}
	if err := s.prompt.Confirm(fmt.Sprintf("Add %s to %s?", member.Name, society.Description)); err != nil {
		return err
	}
	return s.mutator.AddSocietyAdmin(ctx, member, society)
}

// RevokeAdmin removes a member from a society's admins. Warns if the
// member is not an admin, or is the only one remaining.
func (s *Scripts) RevokeAdmin(ctx context.Context, member *Member, society *Society) error {
	if !society.IsAdmin(member.CRSID) {
		s.prompt.Warnf("Warning: %s is not an admin of %s", member.CRSID, society.Name)
	} else if society.IsSoleAdmin(member.CRSID) {
		s.prompt.Warnf("Warning: removing the only remaining admin")
	}
	if err := s.prompt.Confirm(fmt.Sprintf("Remove %s from %s?", member.Name, society.Description)); err != nil {
		return err
	}
	return s.mutator.RemoveSocietyAdmin(ctx, member, society)
}

// DeleteGroup deletes a society's account and all associated records.
func (s *Scripts) DeleteGroup(ctx context.Context, society *Society) error {
	if err := s.prompt.Confirm(fmt.Sprintf("Delete %s?", society.Description)); err != nil {
		return err
	}
	return s.mutator.DeleteSociety(ctx, society)
}
