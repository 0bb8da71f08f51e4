package workflow

import (
	"fmt"

	"github.com/diewo77/go-stages/internal/apperr"
)

// Signatures is the signature state of an entente: the three party fields and
// the aggregate status computed from them.
type Signatures struct {
	Etudiant     SignatureStatus
	Employeur    SignatureStatus
	Gestionnaire SignatureStatus
	Statut       EntenteStatus
}

// Field returns the signature field owned by role.
func (s Signatures) Field(role Role) (SignatureStatus, error) {
	switch role {
	case RoleStudent:
		return s.Etudiant, nil
	case RoleEmployer:
		return s.Employeur, nil
	case RoleManager:
		return s.Gestionnaire, nil
	}
	return "", apperr.Validation(map[string]string{"role": "not_a_signatory"})
}

func (s *Signatures) set(role Role, v SignatureStatus) {
	switch role {
	case RoleStudent:
		s.Etudiant = v
	case RoleEmployer:
		s.Employeur = v
	case RoleManager:
		s.Gestionnaire = v
	}
}

// FullySigned reports whether both student and employer have signed. The
// manager signature never gates the aggregate.
func (s Signatures) FullySigned() bool {
	return s.Etudiant == SignatureSignee && s.Employeur == SignatureSignee
}

// SignatureColumn is the storage column of role's signature field.
func SignatureColumn(role Role) string {
	switch role {
	case RoleStudent:
		return "etudiant_signature"
	case RoleEmployer:
		return "employeur_signature"
	case RoleManager:
		return "gestionnaire_signature"
	}
	return ""
}

// ApplySignature computes the state after role records want (SIGNEE or
// REFUSEE). changed is false when the field already holds want, in which
// case cur is returned untouched. A field already holding the other terminal
// value, or an entente that can no longer move, yields InvalidTransition.
func ApplySignature(cur Signatures, role Role, want SignatureStatus) (next Signatures, changed bool, err error) {
	if want != SignatureSignee && want != SignatureRefusee {
		return cur, false, apperr.Validation(map[string]string{"signature": "invalid_choice"})
	}
	field, err := cur.Field(role)
	if err != nil {
		return cur, false, err
	}
	if field == want {
		return cur, false, nil
	}
	if field != SignatureEnAttente {
		return cur, false, apperr.InvalidTransition("%s signature is already %s", role, field)
	}
	if cur.Statut.Closed() {
		return cur, false, apperr.InvalidTransition("entente is %s", cur.Statut)
	}
	if want == SignatureRefusee && cur.Statut == EntenteSignee {
		return cur, false, apperr.InvalidTransition("entente is already %s", cur.Statut)
	}

	next = cur
	next.set(role, want)
	switch {
	case want == SignatureRefusee:
		next.Statut = EntenteRefusee
	case next.FullySigned():
		next.Statut = EntenteSignee
	default:
		next.Statut = EntenteEnAttente
	}
	return next, true, nil
}

// CancelEntente moves a pending entente to ANNULEE. Cancelling an already
// cancelled entente is a no-op.
func CancelEntente(cur EntenteStatus) (changed bool, err error) {
	switch cur {
	case EntenteAnnulee:
		return false, nil
	case EntenteEnAttente:
		return true, nil
	}
	return false, apperr.InvalidTransition("entente is %s", cur)
}

// candidatureTransitions lists the allowed targets from each status. A target
// equal to the source is a no-op.
var candidatureTransitions = map[CandidatureStatus][]CandidatureStatus{
	CandidatureEnAttente: {CandidatureEntrevue, CandidatureRefusee},
	CandidatureEntrevue:  {CandidatureEntrevue, CandidatureAcceptee, CandidatureRefusee},
	CandidatureAcceptee:  {CandidatureAcceptee},
	CandidatureRefusee:   {CandidatureRefusee},
}

// NextCandidature validates cur -> want.
func NextCandidature(cur, want CandidatureStatus) (changed bool, err error) {
	if !want.Valid() {
		return false, apperr.Validation(map[string]string{"statut": "invalid_choice"})
	}
	for _, allowed := range candidatureTransitions[cur] {
		if allowed == want {
			return cur != want, nil
		}
	}
	return false, apperr.InvalidTransition("candidature cannot go from %s to %s", cur, want)
}

var convocationTransitions = map[ConvocationStatus][]ConvocationStatus{
	ConvocationConvoquee: {ConvocationModifie, ConvocationAnnulee},
	ConvocationModifie:   {ConvocationModifie, ConvocationAnnulee},
	ConvocationAnnulee:   {ConvocationAnnulee},
}

// NextConvocation validates cur -> want. A cancelled convocation cannot be revived.
func NextConvocation(cur, want ConvocationStatus) (changed bool, err error) {
	for _, allowed := range convocationTransitions[cur] {
		if allowed == want {
			// MODIFIE -> MODIFIE still rewrites the payload.
			return cur != want || want == ConvocationModifie, nil
		}
	}
	return false, apperr.InvalidTransition("convocation cannot go from %s to %s", cur, want)
}

// EvaluatorRole maps an actor role to the evaluator role it evaluates as.
func EvaluatorRole(r Role) (Role, bool) {
	switch r {
	case RoleProfessor, RoleEmployer:
		return r, true
	}
	return "", false
}

// CanSignAs reports whether an actor with role actor may act on the
// signature field of role field. Each party signs only its own field.
func CanSignAs(actor, field Role) bool {
	switch field {
	case RoleStudent, RoleEmployer, RoleManager:
		return actor == field
	}
	return false
}

func (s Signatures) String() string {
	return fmt.Sprintf("etudiant=%s employeur=%s gestionnaire=%s statut=%s", s.Etudiant, s.Employeur, s.Gestionnaire, s.Statut)
}
