// internal/services/testhelpers_test.go
package services

import (
	"testing"

	"gorm.io/gorm"

	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/models"
)

// testWorld is the minimal reference data most service tests need: one
// form and a couple of persons.
type testWorld struct {
	db    *gorm.DB
	form  *models.Form
	admin *models.Person
	alice *models.Person
}

func newTestWorld(t *testing.T, name string) *testWorld {
	db := openTestDB(t, "file:"+name+"?mode=memory&cache=shared")
	return &testWorld{
		db:    db,
		form:  seedForm(t, db, models.FormSalesRFQ),
		admin: seedPerson(t, db, "admin_"+name, models.PersonRoleAdmin),
		alice: seedPerson(t, db, "alice_"+name, models.PersonRoleAgent),
	}
}
