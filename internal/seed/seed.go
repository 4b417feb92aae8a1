// Package seed bootstraps reference data so a fresh install is usable
// without manual setup.
package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	identitydomain "github.com/compfund/cfportal/internal/identity/domain"
	"github.com/compfund/cfportal/internal/identity/password"
	orgdomain "github.com/compfund/cfportal/internal/organisation/domain"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminEmail    = "admin@cfportal.local"
	defaultAdminPassword = "admin"
)

// EnsureDefaultAdmin seeds the back-office account for self-hosted
// installs. Existing accounts are left untouched.
func EnsureDefaultAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var admin identitydomain.AdminUser
		err := tx.WithContext(ctx).
			Where("username = ?", defaultAdminUsername).
			First(&admin).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := password.Hash(defaultAdminPassword)
		if err != nil {
			return err
		}
		admin = identitydomain.AdminUser{
			ID:           node.Generate(),
			Username:     defaultAdminUsername,
			Email:        strings.ToLower(defaultAdminEmail),
			PasswordHash: hashed,
			Role:         identitydomain.RoleSuperAdmin,
			Permissions:  datatypes.JSONMap{},
			IsActive:     true,
		}
		return tx.WithContext(ctx).Create(&admin).Error
	})
}

// EnsureDraftOrganisations seeds the registered employer records that
// back the verification flow. Each record is a draft with no owner
// until a portal user verifies against it.
func EnsureDraftOrganisations(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, record := range draftOrganisations() {
			var existing orgdomain.Organisation
			err := tx.WithContext(ctx).
				Where("organisation_type = ? AND registration_number = ?",
					record.OrganisationType, record.RegistrationNumber).
				First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			record.ID = node.Generate()
			record.Status = orgdomain.StatusDraft
			record.VerificationStatus = orgdomain.VerificationPending
			record.MaxLinkedUsers = orgdomain.DefaultMaxLinkedUsers
			if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func draftOrganisations() []orgdomain.Organisation {
	return []orgdomain.Organisation{
		{
			OrganisationType:   orgdomain.TypeCompanyRegistration,
			RegistrationNumber: "2013 / 058921 / 07",
			IdentityNumbers:    datatypes.NewJSONSlice([]string{"9607055592088", "9607055592089"}),
			TaxNumber:          "1234567801",
			Details: datatypes.JSONMap{
				"ownershipType":     "PTY/LTD",
				"tradingName":       "Atisa Software Solutions",
				"firstEmployeeDate": "2025-11-18T00:00:00Z",
			},
			Address: datatypes.JSONMap{
				"number":     "4th Floor at Podium At Menlyn",
				"name":       "43 Ingersol Road",
				"suburb":     "Cnr. Lois and Atterbury Road",
				"city":       "Menlyn, Pretoria",
				"province":   "Gauteng",
				"postalCode": "0181",
			},
			Contact: datatypes.JSONMap{
				"person":    "Kenny Mafuna",
				"telephone": "0719080400",
				"cellphone": "0719080400",
				"email":     "kennymafuna321@gmail.com",
			},
			Banking: datatypes.JSONMap{
				"bankName":      "First National Bank",
				"accountHolder": "Kabelo Mogwetsi",
				"accountNumber": "1234567897897",
				"branchCode":    "00101",
			},
			BusinessInfo: datatypes.JSONMap{
				"numberOfEmployees": 10,
				"industries":        []string{"2210"},
			},
		},
		{
			OrganisationType:   orgdomain.TypeCompanyRegistration,
			RegistrationNumber: "2014 / 058922 / 08",
			IdentityNumbers:    datatypes.NewJSONSlice([]string{"9607055592089"}),
			TaxNumber:          "8765432101",
			Details: datatypes.JSONMap{
				"ownershipType":     "PTY/LTD",
				"tradingName":       "ByteCraft Innovations",
				"firstEmployeeDate": "2023-05-10T00:00:00Z",
			},
			Address: datatypes.JSONMap{
				"number":     "22209",
				"name":       "Green Park",
				"suburb":     "Hillview",
				"city":       "Cape Town",
				"province":   "Western Cape",
				"postalCode": "8001",
			},
			Contact: datatypes.JSONMap{
				"person":    "Alice Johnson",
				"telephone": "0219081234",
				"cellphone": "0821234567",
				"email":     "alice.johnson@bytecraft.example",
			},
			Banking: datatypes.JSONMap{
				"bankName":      "Standard Bank",
				"accountHolder": "Alice Johnson",
				"accountNumber": "9876543210987",
				"branchCode":    "00202",
			},
			BusinessInfo: datatypes.JSONMap{
				"numberOfEmployees": 25,
				"industries":        []string{"3350"},
			},
		},
		{
			OrganisationType:   orgdomain.TypeCompanyRegistration,
			RegistrationNumber: "2015 / 058923 / 09",
			IdentityNumbers:    datatypes.NewJSONSlice([]string{"9607055592090"}),
			TaxNumber:          "1122334401",
			Details: datatypes.JSONMap{
				"ownershipType":     "PTY/LTD",
				"tradingName":       "NextGen Solutions",
				"firstEmployeeDate": "2021-07-22T00:00:00Z",
			},
			Address: datatypes.JSONMap{
				"number":     "33310",
				"name":       "Sunset Blvd",
				"suburb":     "Sunnyside",
				"city":       "Durban",
				"province":   "KwaZulu-Natal",
				"postalCode": "4001",
			},
			Contact: datatypes.JSONMap{
				"person":    "Michael Smith",
				"telephone": "0319085678",
				"cellphone": "0835678910",
				"email":     "michael.smith@nextgen.example",
			},
			Banking: datatypes.JSONMap{
				"bankName":      "ABSA Bank",
				"accountHolder": "Michael Smith",
				"accountNumber": "5566778899001",
				"branchCode":    "00303",
			},
			BusinessInfo: datatypes.JSONMap{
				"numberOfEmployees": 15,
				"industries":        []string{"4410"},
			},
		},
		{
			OrganisationType:   orgdomain.TypeCompanyRegistration,
			RegistrationNumber: "2016 / 058924 / 10",
			IdentityNumbers:    datatypes.NewJSONSlice([]string{"9607055592091"}),
			TaxNumber:          "2233445501",
			Details: datatypes.JSONMap{
				"ownershipType":     "PTY/LTD",
				"tradingName":       "Innovatech Labs",
				"firstEmployeeDate": "2022-03-15T00:00:00Z",
			},
			Address: datatypes.JSONMap{
				"number":     "44411",
				"name":       "Tech Park",
				"suburb":     "Midtown",
				"city":       "Pretoria",
				"province":   "Gauteng",
				"postalCode": "0001",
			},
			Contact: datatypes.JSONMap{
				"person":    "Sophie Turner",
				"telephone": "0129083456",
				"cellphone": "0841234567",
				"email":     "sophie.turner@innovatech.example",
			},
			Banking: datatypes.JSONMap{
				"bankName":      "Nedbank",
				"accountHolder": "Sophie Turner",
				"accountNumber": "6677889900112",
				"branchCode":    "00404",
			},
			BusinessInfo: datatypes.JSONMap{
				"numberOfEmployees": 18,
				"industries":        []string{"5540"},
			},
		},
		{
			OrganisationType:   orgdomain.TypeCompanyRegistration,
			RegistrationNumber: "2017 / 058925 / 11",
			IdentityNumbers:    datatypes.NewJSONSlice([]string{"9607055592092"}),
			TaxNumber:          "3344556601",
			Details: datatypes.JSONMap{
				"ownershipType":     "PTY/LTD",
				"tradingName":       "CyberWorks",
				"firstEmployeeDate": "2020-01-05T00:00:00Z",
			},
			Address: datatypes.JSONMap{
				"number":     "55512",
				"name":       "Cyber Street",
				"suburb":     "Techville",
				"city":       "Johannesburg",
				"province":   "Gauteng",
				"postalCode": "2001",
			},
			Contact: datatypes.JSONMap{
				"person":    "David Lee",
				"telephone": "0119088765",
				"cellphone": "0858765432",
				"email":     "david.lee@cyberworks.example",
			},
			Banking: datatypes.JSONMap{
				"bankName":      "Capitec Bank",
				"accountHolder": "David Lee",
				"accountNumber": "7788990011223",
				"branchCode":    "00505",
			},
			BusinessInfo: datatypes.JSONMap{
				"numberOfEmployees": 12,
				"industries":        []string{"6670"},
			},
		},
	}
}
