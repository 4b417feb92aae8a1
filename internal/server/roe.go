package server

import (
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	roedomain "github.com/compfund/cfportal/internal/roe/domain"
)

func parseROEID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, roedomain.ErrROENotFound
	}
	return id, nil
}

func formFloat(c *gin.Context, key string) *float64 {
	raw, ok := c.GetPostForm(key)
	if !ok || raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func formInt(c *gin.Context, key string) *int {
	raw, ok := c.GetPostForm(key)
	if !ok || raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func formString(c *gin.Context, key string) *string {
	raw, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &raw
}

// roeDocumentMeta captures the optional multipart upload as document
// metadata for the declaration.
func (s *Server) roeDocumentMeta(c *gin.Context) (*roedomain.DocumentMeta, error) {
	if _, err := c.FormFile("file"); err != nil {
		return nil, nil
	}
	file, err := s.saveUpload(c)
	if err != nil {
		return nil, err
	}
	documentType := c.PostForm("documentType")
	if documentType == "" {
		documentType = roedomain.DefaultDocumentType
	}
	return &roedomain.DocumentMeta{
		Filename:     file.Filename,
		OriginalName: file.OriginalName,
		DocumentType: documentType,
		FileSize:     file.Size,
		MimeType:     file.MimeType,
	}, nil
}

// CreateROE records a declaration, or merges the supplied fields into
// the existing record for the same organisation and year.
func (s *Server) CreateROE(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, errUnauthorized)
		return
	}

	year := 0
	if v := formInt(c, "assessmentYear"); v != nil {
		year = *v
	}

	doc, err := s.roeDocumentMeta(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	roe, created, err := s.roeSvc.Create(c.Request.Context(), user.ID, roedomain.CreateRequest{
		CFRegistrationNumber: c.PostForm("cfRegistrationNumber"),
		AssessmentYear:       year,
		EmployeesEarnings:    formFloat(c, "employeesEarnings"),
		DirectorsEarnings:    formFloat(c, "directorsEarnings"),
		AccommodationMeals:   formFloat(c, "accommodationMeals"),
		NumberOfEmployees:    formInt(c, "numberOfEmployees"),
		NumberOfDirectors:    formInt(c, "numberOfDirectors"),
		Comments:             formString(c, "comments"),
		Document:             doc,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusOK
	message := "Return of earnings updated successfully"
	if created {
		status = http.StatusCreated
		message = "Return of earnings created successfully"
	}
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"data":    gin.H{"roe": roe},
	})
}

type submitROEDocument struct {
	DocumentType string `json:"documentType"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	FileSize     int64  `json:"fileSize"`
	MimeType     string `json:"mimeType"`
}

type submitROERequest struct {
	CFRegistrationNumber  string                `json:"cfRegistrationNumber"`
	AssessmentYear        int                   `json:"assessmentYear"`
	Documents             []submitROEDocument   `json:"documents"`
	FinalAssessment       *roedomain.Assessment `json:"finalAssessment"`
	ProvisionalAssessment *roedomain.Assessment `json:"provisionalAssessment"`
	Comment               string                `json:"comment"`
	EmployeesEarnings     *float64              `json:"employeesEarnings"`
	DirectorsEarnings     *float64              `json:"directorsEarnings"`
	AccommodationMeals    *float64              `json:"accommodationMeals"`
	TotalEarnings         *float64              `json:"totalEarnings"`
	NumberOfEmployees     *int                  `json:"numberOfEmployees"`
	NumberOfDirectors     *int                  `json:"numberOfDirectors"`
}

// SubmitROE finalises the declaration for assessment and returns the
// payment amount due.
func (s *Server) SubmitROE(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, errUnauthorized)
		return
	}

	var req submitROERequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	docs := make([]roedomain.DocumentMeta, 0, len(req.Documents))
	for _, d := range req.Documents {
		docs = append(docs, roedomain.DocumentMeta{
			Filename:     d.Filename,
			OriginalName: d.OriginalName,
			DocumentType: d.DocumentType,
			FileSize:     d.FileSize,
			MimeType:     d.MimeType,
		})
	}

	roe, payment, created, err := s.roeSvc.Submit(c.Request.Context(), user.ID, roedomain.SubmitRequest{
		CFRegistrationNumber:  req.CFRegistrationNumber,
		AssessmentYear:        req.AssessmentYear,
		Documents:             docs,
		FinalAssessment:       req.FinalAssessment,
		ProvisionalAssessment: req.ProvisionalAssessment,
		Comment:               req.Comment,
		EmployeesEarnings:     req.EmployeesEarnings,
		DirectorsEarnings:     req.DirectorsEarnings,
		AccommodationMeals:    req.AccommodationMeals,
		TotalEarnings:         req.TotalEarnings,
		NumberOfEmployees:     req.NumberOfEmployees,
		NumberOfDirectors:     req.NumberOfDirectors,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"success": true,
		"message": "Return of earnings submitted successfully",
		"data": gin.H{
			"roe":           roe,
			"paymentAmount": payment,
		},
	})
}

func (s *Server) ListROEsByOrganisation(c *gin.Context) {
	roes, err := s.roeSvc.ListByOrganisation(c.Request.Context(), c.Param("cfRegistrationNumber"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"roes":  roes,
			"count": len(roes),
		},
	})
}

func (s *Server) GetROE(c *gin.Context) {
	id, err := parseROEID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	roe, err := s.roeSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"roe": roe},
	})
}

func (s *Server) UpdateROE(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		AbortWithError(c, errUnauthorized)
		return
	}
	id, err := parseROEID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.roeDocumentMeta(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	roe, err := s.roeSvc.Update(c.Request.Context(), id, roedomain.UpdateRequest{
		EmployeesEarnings:  formFloat(c, "employeesEarnings"),
		DirectorsEarnings:  formFloat(c, "directorsEarnings"),
		AccommodationMeals: formFloat(c, "accommodationMeals"),
		NumberOfEmployees:  formInt(c, "numberOfEmployees"),
		NumberOfDirectors:  formInt(c, "numberOfDirectors"),
		Status:             formString(c, "status"),
		Comments:           formString(c, "comments"),
		AssessmentYear:     formInt(c, "assessmentYear"),
		Document:           doc,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Return of earnings updated successfully",
		"data":    gin.H{"roe": roe},
	})
}

func (s *Server) FlagROEForAudit(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		AbortWithError(c, errUnauthorized)
		return
	}
	id, err := parseROEID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	roe, err := s.roeSvc.FlagForAudit(c.Request.Context(), id, admin.Username)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Return of earnings flagged for audit",
		"data":    gin.H{"roe": roe},
	})
}

func (s *Server) AcceptROESubmission(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		AbortWithError(c, errUnauthorized)
		return
	}
	id, err := parseROEID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	roe, err := s.roeSvc.AcceptSubmission(c.Request.Context(), id, admin.Username)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Return of earnings submission accepted",
		"data":    gin.H{"roe": roe},
	})
}
