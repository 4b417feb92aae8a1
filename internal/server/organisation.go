package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	orgdomain "github.com/compfund/cfportal/internal/organisation/domain"
)

func parseOrgID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, orgdomain.ErrOrganisationNotFound
	}
	return id, nil
}

type verifyOrganisationRequest struct {
	OrganisationType   string `json:"organisationType"`
	RegistrationNumber string `json:"registrationNumber"`
	IdentityNumber     string `json:"identityNumber"`
	TaxNumber          string `json:"taxNumber"`
}

// VerifyOrganisation checks the presented identifiers against the
// registered employer record.
func (s *Server) VerifyOrganisation(c *gin.Context) {
	var req verifyOrganisationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	result, err := s.orgSvc.VerifyDetails(c.Request.Context(), orgdomain.VerifyDetailsRequest{
		OrganisationType:   req.OrganisationType,
		RegistrationNumber: req.RegistrationNumber,
		IdentityNumber:     req.IdentityNumber,
		TaxNumber:          req.TaxNumber,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Organisation verified successfully",
		"data": gin.H{
			"organisationDetails":   organisationDetailsView(result.Organisation),
			"organisationDocuments": result.Documents,
		},
	})
}

// organisationDetailsView reassembles the stored profile sections
// into the nested shape clients expect.
func organisationDetailsView(org *orgdomain.Organisation) gin.H {
	details := gin.H{}
	for k, v := range org.Details {
		details[k] = v
	}
	details["address"] = gin.H{"street": map[string]any(org.Address)}
	details["contact"] = map[string]any(org.Contact)
	details["banking"] = map[string]any(org.Banking)
	details["businessInfo"] = map[string]any(org.BusinessInfo)
	return details
}

// UploadOrganisationDocument stores one registration document against
// the organisation named by registration number.
func (s *Server) UploadOrganisationDocument(c *gin.Context) {
	documentType := c.PostForm("documentType")
	registrationNumber := c.PostForm("registrationNumber")
	if documentType == "" {
		AbortWithError(c, errInvalidRequest)
		return
	}

	file, err := s.saveUpload(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.orgSvc.UploadDocument(c.Request.Context(), orgdomain.UploadDocumentRequest{
		RegistrationNumber: registrationNumber,
		DocumentType:       documentType,
		File:               file,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Document uploaded successfully",
		"data": gin.H{
			"document": gin.H{
				"id":           doc.ID.String(),
				"originalName": doc.OriginalName,
				"documentType": doc.DocumentType,
				"fileSize":     doc.FileSize,
				"uploadDate":   doc.UploadedAt,
			},
		},
	})
}

// ReplaceOrganisationDocument swaps an existing document's file and
// type in place.
func (s *Server) ReplaceOrganisationDocument(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, errUnauthorized)
		return
	}
	orgID, err := parseOrgID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	docID, err := snowflake.ParseString(c.Param("documentId"))
	if err != nil {
		AbortWithError(c, orgdomain.ErrDocumentNotFound)
		return
	}

	file, err := s.saveUpload(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.orgSvc.ReplaceDocument(c.Request.Context(), orgdomain.ReplaceDocumentRequest{
		UserID:         user.ID,
		OrganisationID: orgID,
		DocumentID:     docID,
		DocumentType:   c.Param("documentType"),
		File:           file,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Document updated successfully",
		"data":    gin.H{"document": doc},
	})
}

func (s *Server) GetOrganisationProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, errUnauthorized)
		return
	}

	org, err := s.orgSvc.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"organisation": gin.H{
				"id":                 org.ID.String(),
				"organisationType":   org.OrganisationType,
				"registrationNumber": org.RegistrationNumber,
				"identityNumber":     org.IdentityNumbers,
				"taxNumber":          org.TaxNumber,
				"verificationStatus": org.VerificationStatus,
				"status":             org.Status,
				"documents":          org.Documents,
				"submittedAt":        org.SubmittedAt,
				"approvedAt":         org.ApprovedAt,
				"user": gin.H{
					"name":        user.Name,
					"surname":     user.Surname,
					"email":       user.Email,
					"phoneNumber": user.PhoneNumber,
				},
			},
		},
	})
}

func (s *Server) GetUserOrganisations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, errUnauthorized)
		return
	}

	accesses, err := s.orgSvc.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	owned, linked := 0, 0
	views := make([]gin.H, 0, len(accesses))
	for _, access := range accesses {
		org := access.Organisation
		view := gin.H{
			"id":                  org.ID.String(),
			"organisationType":    org.OrganisationType,
			"registrationNumber":  org.RegistrationNumber,
			"taxNumber":           org.TaxNumber,
			"verificationStatus":  org.VerificationStatus,
			"status":              org.Status,
			"createdAt":           org.CreatedAt,
			"submittedAt":         org.SubmittedAt,
			"approvedAt":          org.ApprovedAt,
			"organisationDetails": organisationDetailsView(&org),
			"documents":           org.Documents,
			"userRole":            access.Role,
			"linkingStatus":       access.LinkStatus,
			"isOwner":             access.Role == "owner",
			"isLinkedUser":        access.Role == "linked_user",
		}
		if org.Status == orgdomain.StatusApproved {
			view["cfRegistrationNumber"] = org.CFRegistrationNumber
			view["bpNumber"] = org.BPNumber
		}
		if access.Role == "linked_user" {
			view["linkedAt"] = access.LinkedAt
			view["hasSignedForm"] = access.HasSigned
			linked++
		} else {
			owned++
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"organisations": views,
			"summary": gin.H{
				"total": len(views),
				"owned": owned,
				"linked": linked,
			},
		},
	})
}

func (s *Server) ListAllOrganisations(c *gin.Context) {
	orgs, err := s.orgSvc.ListAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	views := make([]gin.H, 0, len(orgs))
	for _, org := range orgs {
		tradingName, _ := org.Details["tradingName"].(string)
		views = append(views, gin.H{
			"id":                 org.ID.String(),
			"organisationType":   org.OrganisationType,
			"registrationNumber": org.RegistrationNumber,
			"tradingName":        tradingName,
			"status":             org.Status,
			"verificationStatus": org.VerificationStatus,
			"submittedAt":        org.SubmittedAt,
			"createdAt":          org.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"organisations": views},
	})
}

func (s *Server) GetOrganisationByID(c *gin.Context) {
	id, err := parseOrgID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	org, err := s.orgSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	tradingName, _ := org.Details["tradingName"].(string)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"organisation": gin.H{
				"id":                 org.ID.String(),
				"organisationType":   org.OrganisationType,
				"registrationNumber": org.RegistrationNumber,
				"identityNumber":     org.IdentityNumbers,
				"taxNumber":          org.TaxNumber,
				"tradingName":        tradingName,
				"status":             org.Status,
				"verificationStatus": org.VerificationStatus,
				"submittedAt":        org.SubmittedAt,
				"approvedAt":         org.ApprovedAt,
				"createdAt":          org.CreatedAt,
			},
		},
	})
}

type updateDetailsRequest struct {
	OrganisationDetails map[string]any `json:"organisationDetails"`
}

// UpdateOrganisationDetails merges the nested profile payload into
// the stored sections; a complete draft auto-submits.
func (s *Server) UpdateOrganisationDetails(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, errUnauthorized)
		return
	}
	orgID, err := parseOrgID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	org, submitted, err := s.orgSvc.UpdateDetails(c.Request.Context(), user.ID, orgID, splitProfilePayload(req.OrganisationDetails))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	message := "Organisation details updated successfully"
	if submitted {
		message = "Organisation details updated and submitted for approval"
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"data": gin.H{
			"organisation": gin.H{
				"id":                  org.ID.String(),
				"organisationDetails": organisationDetailsView(org),
				"status":              org.Status,
				"submittedAt":         org.SubmittedAt,
			},
		},
	})
}

// splitProfilePayload breaks the nested organisationDetails document
// into per-section updates.
func splitProfilePayload(payload map[string]any) orgdomain.ProfileUpdate {
	var update orgdomain.ProfileUpdate
	details := map[string]any{}
	for key, value := range payload {
		switch key {
		case "address":
			if addr, ok := value.(map[string]any); ok {
				if street, ok := addr["street"].(map[string]any); ok {
					update.Address = street
				}
			}
		case "contact":
			if m, ok := value.(map[string]any); ok {
				update.Contact = m
			}
		case "banking":
			if m, ok := value.(map[string]any); ok {
				update.Banking = m
			}
		case "businessInfo":
			if m, ok := value.(map[string]any); ok {
				update.BusinessInfo = m
			}
		default:
			details[key] = value
		}
	}
	if len(details) > 0 {
		update.Details = details
	}
	return update
}

type submitApprovalRequest struct {
	OrganisationDetails struct {
		OrganisationType   string `json:"organisationType"`
		RegistrationNumber string `json:"registrationNumber"`
		IdentityNumber     string `json:"identityNumber"`
		TaxNumber          string `json:"taxNumber"`
	} `json:"organisationDetails"`
}

func (s *Server) SubmitForApproval(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, errUnauthorized)
		return
	}

	var req submitApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	org, err := s.orgSvc.SubmitForApproval(c.Request.Context(), user.ID, orgdomain.SubmissionKey{
		OrganisationType:   req.OrganisationDetails.OrganisationType,
		RegistrationNumber: req.OrganisationDetails.RegistrationNumber,
		IdentityNumber:     req.OrganisationDetails.IdentityNumber,
		TaxNumber:          req.OrganisationDetails.TaxNumber,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Organisation submitted for approval successfully",
		"data": gin.H{
			"organisation": gin.H{
				"id":          org.ID.String(),
				"status":      org.Status,
				"submittedAt": org.SubmittedAt,
			},
		},
	})
}

func (s *Server) ResubmitOrganisation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, errUnauthorized)
		return
	}
	orgID, err := parseOrgID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	org, err := s.orgSvc.Resubmit(c.Request.Context(), user.ID, orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Organisation resubmitted for approval successfully",
		"data": gin.H{
			"organisation": gin.H{
				"id":          org.ID.String(),
				"status":      org.Status,
				"submittedAt": org.SubmittedAt,
			},
		},
	})
}

type approveOrganisationRequest struct {
	ApprovalNotes        string `json:"approvalNotes"`
	CFRegistrationNumber string `json:"cfRegistrationNumber"`
}

func (s *Server) ApproveOrganisation(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		AbortWithError(c, errUnauthorized)
		return
	}
	orgID, err := parseOrgID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req approveOrganisationRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		AbortWithError(c, errInvalidRequest)
		return
	}

	org, err := s.orgSvc.Approve(c.Request.Context(), orgdomain.ApproveRequest{
		OrganisationID: orgID,
		ApprovedBy:     admin.Username,
		Notes:          req.ApprovalNotes,
		CFOverride:     req.CFRegistrationNumber,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	tradingName, _ := org.Details["tradingName"].(string)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Organisation approved successfully and notification email sent",
		"data": gin.H{
			"organisation": gin.H{
				"id":                   org.ID.String(),
				"registrationNumber":   org.RegistrationNumber,
				"tradingName":          tradingName,
				"status":               org.Status,
				"verificationStatus":   org.VerificationStatus,
				"approvedAt":           org.ApprovedAt,
				"cfRegistrationNumber": org.CFRegistrationNumber,
				"bpNumber":             org.BPNumber,
				"approvedBy":           org.ApprovedBy,
				"approvalNotes":        org.ApprovalNotes,
			},
		},
	})
}

type rejectOrganisationRequest struct {
	RejectionReason string `json:"rejectionReason"`
	Notes           string `json:"notes"`
}

func (s *Server) RejectOrganisation(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		AbortWithError(c, errUnauthorized)
		return
	}
	orgID, err := parseOrgID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req rejectOrganisationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	org, err := s.orgSvc.Reject(c.Request.Context(), orgdomain.RejectRequest{
		OrganisationID: orgID,
		RejectedBy:     admin.Username,
		Reason:         req.RejectionReason,
		Notes:          req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	tradingName, _ := org.Details["tradingName"].(string)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Organisation rejected successfully",
		"data": gin.H{
			"organisation": gin.H{
				"id":                 org.ID.String(),
				"registrationNumber": org.RegistrationNumber,
				"tradingName":        tradingName,
				"status":             org.Status,
				"verificationStatus": org.VerificationStatus,
				"rejectedBy":         org.RejectedBy,
				"rejectionReason":    org.RejectionReason,
				"rejectionNotes":     org.RejectionNotes,
			},
		},
	})
}

func (s *Server) updateSection(c *gin.Context, section string, values map[string]any) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, errUnauthorized)
		return
	}
	orgID, err := parseOrgID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	org, err := s.orgSvc.UpdateSection(c.Request.Context(), user.ID, orgID, section, values)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": sectionUpdateMessage(section),
		"data": gin.H{
			"organisation": gin.H{
				"id":                  org.ID.String(),
				"organisationDetails": organisationDetailsView(org),
			},
		},
	})
}

func sectionUpdateMessage(section string) string {
	switch section {
	case orgdomain.SectionContact:
		return "Contact information updated successfully"
	case orgdomain.SectionAddress:
		return "Address information updated successfully"
	case orgdomain.SectionBanking:
		return "Banking information updated successfully"
	default:
		return "Business information updated successfully"
	}
}

func (s *Server) UpdateContactInfo(c *gin.Context) {
	var req struct {
		Contact map[string]any `json:"contact"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}
	s.updateSection(c, orgdomain.SectionContact, req.Contact)
}

func (s *Server) UpdateAddressInfo(c *gin.Context) {
	var req struct {
		Address map[string]any `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}
	s.updateSection(c, orgdomain.SectionAddress, req.Address)
}

func (s *Server) UpdateBankingInfo(c *gin.Context) {
	var req struct {
		Banking map[string]any `json:"banking"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}
	s.updateSection(c, orgdomain.SectionBanking, req.Banking)
}

// UpdateBusinessInfo merges business fields and, when present, the
// first employee date which lives in the details section.
func (s *Server) UpdateBusinessInfo(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, errUnauthorized)
		return
	}
	orgID, err := parseOrgID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req struct {
		BusinessInfo      map[string]any `json:"businessInfo"`
		FirstEmployeeDate string         `json:"firstEmployeeDate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	org := (*orgdomain.Organisation)(nil)
	if len(req.BusinessInfo) > 0 {
		org, err = s.orgSvc.UpdateSection(c.Request.Context(), user.ID, orgID, orgdomain.SectionBusinessInfo, req.BusinessInfo)
		if err != nil {
			AbortWithError(c, err)
			return
		}
	}
	if req.FirstEmployeeDate != "" {
		org, err = s.orgSvc.UpdateSection(c.Request.Context(), user.ID, orgID, orgdomain.SectionDetails, map[string]any{
			"firstEmployeeDate": req.FirstEmployeeDate,
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
	}
	if org == nil {
		org, err = s.orgSvc.UpdateSection(c.Request.Context(), user.ID, orgID, orgdomain.SectionBusinessInfo, map[string]any{})
		if err != nil {
			AbortWithError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Business information updated successfully",
		"data": gin.H{
			"organisation": gin.H{
				"id":                  org.ID.String(),
				"organisationDetails": organisationDetailsView(org),
			},
		},
	})
}
