package db

import (
	"fmt"
	"time"

	"github.com/diewo77/go-stages/internal/models"
	"github.com/diewo77/go-stages/internal/policy"
	"github.com/diewo77/go-stages/internal/workflow"
	"gorm.io/gorm"
)

// SeedProfiles creates the permissions and the profile of every role, and
// resets each profile's permission set to the table in package policy.
// It is idempotent.
func SeedProfiles(gdb *gorm.DB) (map[workflow.Role]uint, error) {
	ids := make(map[workflow.Role]uint, len(policy.RoleProfiles))
	err := gdb.Transaction(func(tx *gorm.DB) error {
		for _, rp := range policy.RoleProfiles {
			perms := make([]models.Permission, 0, len(rp.Permissions))
			for _, code := range rp.Permissions {
				res, act := code.Parse()
				p := models.Permission{ResourceType: res, Action: string(act)}
				if err := tx.Where(&p).FirstOrCreate(&p).Error; err != nil {
					return fmt.Errorf("seed permission %s: %w", code, err)
				}
				perms = append(perms, p)
			}
			prof := models.Profile{Role: rp.Role}
			if err := tx.Where(models.Profile{Role: rp.Role}).
				Attrs(models.Profile{Name: rp.Name, Description: rp.Description}).
				FirstOrCreate(&prof).Error; err != nil {
				return fmt.Errorf("seed profile %s: %w", rp.Name, err)
			}
			if err := tx.Model(&prof).Association("Permissions").Replace(perms); err != nil {
				return fmt.Errorf("seed profile %s permissions: %w", rp.Name, err)
			}
			ids[rp.Role] = prof.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Demo holds the identifiers created by SeedDemo.
type Demo struct {
	Users       map[workflow.Role]models.User
	Offre       models.Offre
	Candidature models.Candidature
	Entente     models.Entente
}

var demoUsers = []models.User{
	{Email: "etudiant@example.com", Prenom: "Alice", Nom: "Tremblay", Role: workflow.RoleStudent},
	{Email: "employeur@example.com", Prenom: "Marc", Nom: "Gagnon", Role: workflow.RoleEmployer},
	{Email: "professeur@example.com", Prenom: "Julie", Nom: "Roy", Role: workflow.RoleProfessor},
	{Email: "gestionnaire@example.com", Prenom: "Paul", Nom: "Côté", Role: workflow.RoleManager},
}

// SeedDemo creates one user per role, an offer, a candidature under
// interview and a pending entente between them. Running it twice reuses the
// existing rows.
func SeedDemo(gdb *gorm.DB, profiles map[workflow.Role]uint, now time.Time) (*Demo, error) {
	demo := &Demo{Users: make(map[workflow.Role]models.User, len(demoUsers))}
	err := gdb.Transaction(func(tx *gorm.DB) error {
		for _, u := range demoUsers {
			user := u
			if id, ok := profiles[u.Role]; ok {
				user.ProfileID = &id
			}
			if err := tx.Where(models.User{Email: u.Email}).Attrs(user).FirstOrCreate(&user).Error; err != nil {
				return fmt.Errorf("seed user %s: %w", u.Email, err)
			}
			demo.Users[u.Role] = user
		}
		etudiant := demo.Users[workflow.RoleStudent]
		employeur := demo.Users[workflow.RoleEmployer]
		professeur := demo.Users[workflow.RoleProfessor]

		demo.Offre = models.Offre{EmployeurID: employeur.ID, Titre: "Développeur Go"}
		if err := tx.Where(&demo.Offre).
			Attrs(models.Offre{Description: "Stage de 15 semaines en développement backend"}).
			FirstOrCreate(&demo.Offre).Error; err != nil {
			return fmt.Errorf("seed offre: %w", err)
		}
		demo.Candidature = models.Candidature{OffreID: demo.Offre.ID, EtudiantID: etudiant.ID, EmployeurID: employeur.ID}
		if err := tx.Where(&demo.Candidature).FirstOrCreate(&demo.Candidature).Error; err != nil {
			return fmt.Errorf("seed candidature: %w", err)
		}
		debut := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 14)
		demo.Entente = models.Entente{OffreID: demo.Offre.ID, EtudiantID: etudiant.ID, EmployeurID: employeur.ID}
		if err := tx.Where(&demo.Entente).Attrs(models.Entente{
			CandidatureID:    &demo.Candidature.ID,
			ProfesseurID:     &professeur.ID,
			DateDebut:        debut,
			DateFin:          debut.AddDate(0, 0, 7*15),
			HeuresParSemaine: 35,
			Remuneration:     22.5,
			Description:      demo.Offre.Description,
		}).FirstOrCreate(&demo.Entente).Error; err != nil {
			return fmt.Errorf("seed entente: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return demo, nil
}

// Seed runs SeedProfiles then SeedDemo.
func Seed(gdb *gorm.DB) (*Demo, error) {
	profiles, err := SeedProfiles(gdb)
	if err != nil {
		return nil, err
	}
	return SeedDemo(gdb, profiles, time.Now())
}
