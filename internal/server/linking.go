package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	orgdomain "github.com/compfund/cfportal/internal/organisation/domain"
)

type linkOrganisationRequest struct {
	CFRegistrationNumber string `json:"cfRegistrationNumber"`
}

// LinkOrganisation starts a linking request against an approved
// organisation identified by CF number. The authorisation form is
// mailed to the requester.
func (s *Server) LinkOrganisation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, errUnauthorized)
		return
	}

	var req linkOrganisationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CFRegistrationNumber == "" {
		AbortWithError(c, errInvalidRequest)
		return
	}

	org, err := s.orgSvc.LinkByCF(c.Request.Context(), user.ID, req.CFRegistrationNumber)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	tradingName, _ := org.Details["tradingName"].(string)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Linking request submitted. The authorisation form has been sent to your email.",
		"data": gin.H{
			"organisation": gin.H{
				"id":                   org.ID.String(),
				"tradingName":          tradingName,
				"cfRegistrationNumber": org.CFRegistrationNumber,
			},
			"linkingStatus": orgdomain.LinkStatusPending,
			"nextStep":      "upload-form",
		},
	})
}

// UploadSignedForm attaches the signed authorisation form and
// approves the pending link.
func (s *Server) UploadSignedForm(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, errUnauthorized)
		return
	}

	orgID, err := parseOrgID(c.PostForm("organisationId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	file, err := s.saveUpload(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	org, err := s.orgSvc.UploadSignedForm(c.Request.Context(), user.ID, orgID, file.Path)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	tradingName, _ := org.Details["tradingName"].(string)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Signed form uploaded. You are now linked to the organisation.",
		"data": gin.H{
			"organisation": gin.H{
				"id":          org.ID.String(),
				"tradingName": tradingName,
			},
			"linkingStatus": orgdomain.LinkStatusApproved,
		},
	})
}
