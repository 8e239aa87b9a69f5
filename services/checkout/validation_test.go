package checkout

import (
	"testing"

	"mariiahub/models"
)

func TestValidateDetails(t *testing.T) {
	valid := models.CustomerDetails{
		Name:            "Anna Kowalska",
		Email:           "anna@example.com",
		Phone:           "+48 601 234 567",
		TermsAccepted:   true,
		PrivacyAccepted: true,
	}

	t.Run("accepts valid details", func(t *testing.T) {
		if err := validateDetails(valid); err != nil {
			t.Errorf("unexpected validation error: %v", err)
		}
	})

	t.Run("collects every failing field", func(t *testing.T) {
		err := validateDetails(models.CustomerDetails{})
		if err == nil {
			t.Fatal("expected validation error for empty details")
		}
		for _, field := range []string{"name", "email", "phone", "termsAccepted", "privacyAccepted"} {
			if _, ok := err.Fields[field]; !ok {
				t.Errorf("missing failure for field %q", field)
			}
		}
	})

	t.Run("field checks", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*models.CustomerDetails)
			field  string
		}{
			{"blank name", func(d *models.CustomerDetails) { d.Name = "   " }, "name"},
			{"malformed email", func(d *models.CustomerDetails) { d.Email = "anna@nowhere" }, "email"},
			{"email without user", func(d *models.CustomerDetails) { d.Email = "@example.com" }, "email"},
			{"short phone", func(d *models.CustomerDetails) { d.Phone = "12345" }, "phone"},
			{"letters in phone", func(d *models.CustomerDetails) { d.Phone = "call me maybe" }, "phone"},
			{"terms not accepted", func(d *models.CustomerDetails) { d.TermsAccepted = false }, "termsAccepted"},
			{"privacy not accepted", func(d *models.CustomerDetails) { d.PrivacyAccepted = false }, "privacyAccepted"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				details := valid
				tc.mutate(&details)
				err := validateDetails(details)
				if err == nil {
					t.Fatalf("expected %q to fail validation", tc.field)
				}
				if _, ok := err.Fields[tc.field]; !ok {
					t.Errorf("failure map %v missing field %q", err.Fields, tc.field)
				}
				if len(err.Fields) != 1 {
					t.Errorf("unrelated fields failed too: %v", err.Fields)
				}
			})
		}
	})

	t.Run("phone separators are tolerated", func(t *testing.T) {
		for _, phone := range []string{"+48601234567", "601 234 567", "(48) 601-234-567"} {
			details := valid
			details.Phone = phone
			if err := validateDetails(details); err != nil {
				t.Errorf("phone %q rejected: %v", phone, err)
			}
		}
	})
}
