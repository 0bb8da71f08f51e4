// Package workflow holds the closed status vocabularies of the engine and the
// pure transition functions over them. Nothing here touches storage.
package workflow

import (
	"strings"

	"github.com/diewo77/go-stages/internal/apperr"
)

// SignatureStatus is the state of one party's signature on an entente.
type SignatureStatus string

const (
	SignatureEnAttente SignatureStatus = "EN_ATTENTE"
	SignatureSignee    SignatureStatus = "SIGNEE"
	SignatureRefusee   SignatureStatus = "REFUSEE"
)

func (s SignatureStatus) Valid() bool {
	switch s {
	case SignatureEnAttente, SignatureSignee, SignatureRefusee:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed for the field.
func (s SignatureStatus) Terminal() bool {
	return s == SignatureSignee || s == SignatureRefusee
}

// EntenteStatus is the aggregate status of an entente.
type EntenteStatus string

const (
	EntenteEnAttente EntenteStatus = "EN_ATTENTE"
	EntenteSignee    EntenteStatus = "SIGNEE"
	EntenteAnnulee   EntenteStatus = "ANNULEE"
	EntenteRefusee   EntenteStatus = "REFUSEE"
)

func (s EntenteStatus) Valid() bool {
	switch s {
	case EntenteEnAttente, EntenteSignee, EntenteAnnulee, EntenteRefusee:
		return true
	}
	return false
}

// Closed reports whether the entente can no longer be signed.
func (s EntenteStatus) Closed() bool {
	return s == EntenteAnnulee || s == EntenteRefusee
}

// CandidatureStatus is the status of a student's application.
type CandidatureStatus string

const (
	CandidatureEnAttente CandidatureStatus = "EN_ATTENTE"
	CandidatureEntrevue  CandidatureStatus = "ENTREVUE"
	CandidatureAcceptee  CandidatureStatus = "ACCEPTEE"
	CandidatureRefusee   CandidatureStatus = "REFUSEE"
)

func (s CandidatureStatus) Valid() bool {
	switch s {
	case CandidatureEnAttente, CandidatureEntrevue, CandidatureAcceptee, CandidatureRefusee:
		return true
	}
	return false
}

// Decided reports whether the employer has taken a final decision.
func (s CandidatureStatus) Decided() bool {
	return s == CandidatureAcceptee || s == CandidatureRefusee
}

// ConvocationStatus is the status of an interview convocation.
type ConvocationStatus string

const (
	ConvocationConvoquee ConvocationStatus = "CONVOQUEE"
	ConvocationModifie   ConvocationStatus = "MODIFIE"
	ConvocationAnnulee   ConvocationStatus = "ANNULEE"
)

func (s ConvocationStatus) Valid() bool {
	switch s {
	case ConvocationConvoquee, ConvocationModifie, ConvocationAnnulee:
		return true
	}
	return false
}

// Active reports whether the convocation still occupies the candidature's slot.
func (s ConvocationStatus) Active() bool {
	return s == ConvocationConvoquee || s == ConvocationModifie
}

// StageStatus is the temporal status of a signed entente. It is derived, never stored.
type StageStatus string

const (
	StageUndefined   StageStatus = "UNDEFINED"
	StagePasCommence StageStatus = "PAS_COMMENCE"
	StageEnCours     StageStatus = "EN_COURS"
	StageTermine     StageStatus = "TERMINE"
)

// Role is the role of an actor in the system.
type Role string

const (
	RoleStudent   Role = "STUDENT"
	RoleEmployer  Role = "EMPLOYER"
	RoleProfessor Role = "PROFESSOR"
	RoleManager   Role = "MANAGER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleEmployer, RoleProfessor, RoleManager:
		return true
	}
	return false
}

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", apperr.Validation(map[string]string{"role": "invalid_choice"})
	}
	return r, nil
}

// ParseCandidatureStatus accepts the exact vocabulary only.
func ParseCandidatureStatus(s string) (CandidatureStatus, error) {
	st := CandidatureStatus(strings.TrimSpace(s))
	if !st.Valid() {
		return "", apperr.Validation(map[string]string{"statut": "invalid_choice"})
	}
	return st, nil
}

// Actor is the authenticated party performing an operation. It is passed
// explicitly into every service call.
type Actor struct {
	ID   uint
	Role Role
}

// Zero reports whether the actor is missing.
func (a Actor) Zero() bool { return a.ID == 0 }
