package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shDavlatbek/bmsb/internal/apierror"
	"github.com/shDavlatbek/bmsb/internal/middleware"
	"github.com/shDavlatbek/bmsb/internal/model"
	"github.com/shDavlatbek/bmsb/internal/scope"
	"github.com/shDavlatbek/bmsb/pkg/logger"
	"github.com/shDavlatbek/bmsb/prometheus"
)

// SchoolHandler serves the tenant records themselves: the existence probe,
// public list/detail, and superuser-only management.
type SchoolHandler struct {
	base
	resolver *middleware.TenantResolver
}

// NewSchoolHandler creates the school handler
func NewSchoolHandler(db *gorm.DB, policy *scope.Policy, resolver *middleware.TenantResolver, mismatchStatus int) *SchoolHandler {
	return &SchoolHandler{
		base:     base{db: db, policy: policy, mismatchStatus: mismatchStatus},
		resolver: resolver,
	}
}

// CheckSchool is the tenant-existence probe used by frontends before
// rendering tenant-specific UI. It always answers with a boolean and never
// propagates a lookup error.
func (h *SchoolHandler) CheckSchool(c echo.Context) error {
	prometheus.RecordSchoolOperation("probe")

	key := h.resolver.Key(c.Request().Header.Get(middleware.SchoolHeader), c.Request().Host)
	if key == "" {
		return c.JSON(http.StatusOK, echo.Map{"school": false})
	}

	_, err := h.resolver.Lookup(key)
	if err != nil {
		// Probe semantics: any failure means "no such school", never an error
		return c.JSON(http.StatusOK, echo.Map{"school": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"school": true})
}

// List returns all schools visible to the principal
func (h *SchoolHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	pr := middleware.PrincipalFromContext(c)

	var schools []model.School
	q := h.policy.FilterActiveOnly(h.db.Model(&model.School{}), pr, showInactive(c))
	if err := q.Order("id").Find(&schools).Error; err != nil {
		log.Error("Failed to list schools", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve schools"})
	}

	return c.JSON(http.StatusOK, schools)
}

// Detail returns one school by slug. When a tenant is resolved, only that
// tenant's own record may be addressed.
func (h *SchoolHandler) Detail(c echo.Context) error {
	log := logger.FromContext(c)
	pr := middleware.PrincipalFromContext(c)
	slug := c.Param("slug")

	var school model.School
	q := h.policy.FilterActiveOnly(h.db.Model(&model.School{}), pr, showInactive(c))
	if err := q.Where("slug = ?", slug).First(&school).Error; err != nil {
		log.Warn("School not found", zap.String("slug", slug))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "school not found"})
	}

	// The School model is the tenant itself: a resolved subdomain may only
	// address its own record
	if reqSchool := middleware.SchoolFromContext(c); reqSchool != nil && school.ID != reqSchool.ID {
		prometheus.RecordTenantError(reqSchool.ID, "school_detail_mismatch")
		return c.JSON(h.mismatchStatus, echo.Map{"error": "forbidden for this school"})
	}

	return c.JSON(http.StatusOK, school)
}

// SchoolRequest is the create/update payload for a school
type SchoolRequest struct {
	Domain           string   `json:"domain" validate:"required,min=2,max=100"`
	Name             string   `json:"name" validate:"required,max=255"`
	Slug             string   `json:"slug"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"short_description"`
	FoundedYear      *int     `json:"founded_year"`
	Capacity         uint     `json:"capacity"`
	StudentCount     uint     `json:"student_count"`
	TeacherCount     uint     `json:"teacher_count"`
	DirectionCount   uint     `json:"direction_count"`
	ClassCount       uint     `json:"class_count"`
	Email            string   `json:"email" validate:"omitempty,email"`
	PhoneNumber      string   `json:"phone_number"`
	Address          string   `json:"address"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	InstagramLink    string   `json:"instagram_link" validate:"omitempty,url"`
	TelegramLink     string   `json:"telegram_link" validate:"omitempty,url"`
	FacebookLink     string   `json:"facebook_link" validate:"omitempty,url"`
	YoutubeLink      string   `json:"youtube_link" validate:"omitempty,url"`
	IsActive         *bool    `json:"is_active"`
}

// Create registers a new school and seeds its default menu tree in the
// same transaction. Superuser only.
func (h *SchoolHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSchoolOperation("create")

	var req SchoolRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse school creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	var count int64
	h.db.Model(&model.School{}).Where("domain = ?", req.Domain).Count(&count)
	if count > 0 {
		log.Warn("School with this domain already exists", zap.String("domain", req.Domain))
		return c.JSON(http.StatusConflict, echo.Map{"error": "school with this domain already exists"})
	}

	school := model.School{
		Domain:           req.Domain,
		Name:             req.Name,
		Slug:             req.Slug,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		FoundedYear:      req.FoundedYear,
		Capacity:         req.Capacity,
		StudentCount:     req.StudentCount,
		TeacherCount:     req.TeacherCount,
		DirectionCount:   req.DirectionCount,
		ClassCount:       req.ClassCount,
		Email:            req.Email,
		PhoneNumber:      req.PhoneNumber,
		Address:          req.Address,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		InstagramLink:    req.InstagramLink,
		TelegramLink:     req.TelegramLink,
		FacebookLink:     req.FacebookLink,
		YoutubeLink:      req.YoutubeLink,
	}
	school.IsActive = true
	if req.IsActive != nil {
		school.IsActive = *req.IsActive
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&school).Error; err != nil {
			return err
		}
		return seedDefaultMenus(tx, &school)
	})
	if err != nil {
		log.Error("Failed to create school", zap.String("domain", req.Domain), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "school creation failed"})
	}

	if school.IsActive {
		prometheus.ActiveSchoolsGauge.Inc()
	}
	log.Info("School created",
		zap.Uint("id", school.ID),
		zap.String("domain", school.Domain),
		zap.String("name", school.Name))

	return c.JSON(http.StatusCreated, school)
}

// Update modifies a school. Superusers may edit any school; a bound staff
// account may only edit its own.
func (h *SchoolHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordSchoolOperation("update")

	var school model.School
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&school).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "school not found"})
	}

	if !pr.Superuser && (pr.SchoolID == nil || *pr.SchoolID != school.ID) {
		prometheus.RecordTenantError(school.ID, "school_update_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": "forbidden for this school"})
	}

	var req SchoolRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	// The domain key may only be changed by a superuser
	if req.Domain != school.Domain && !pr.Superuser {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "domain can only be changed by a superuser"})
	}
	if req.Domain != school.Domain {
		var count int64
		h.db.Model(&model.School{}).Where("domain = ? AND id != ?", req.Domain, school.ID).Count(&count)
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{"error": "school with this domain already exists"})
		}
	}

	school.Domain = req.Domain
	school.Name = req.Name
	school.Description = req.Description
	school.ShortDescription = req.ShortDescription
	school.FoundedYear = req.FoundedYear
	school.Capacity = req.Capacity
	school.StudentCount = req.StudentCount
	school.TeacherCount = req.TeacherCount
	school.DirectionCount = req.DirectionCount
	school.ClassCount = req.ClassCount
	school.Email = req.Email
	school.PhoneNumber = req.PhoneNumber
	school.Address = req.Address
	school.Latitude = req.Latitude
	school.Longitude = req.Longitude
	school.InstagramLink = req.InstagramLink
	school.TelegramLink = req.TelegramLink
	school.FacebookLink = req.FacebookLink
	school.YoutubeLink = req.YoutubeLink
	if req.IsActive != nil {
		// Only a superuser may (de)activate a tenant
		if pr.Superuser {
			school.IsActive = *req.IsActive
		}
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Save(&school).Error; err != nil {
		log.Error("Failed to update school", zap.Uint("id", school.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update school"})
	}

	log.Info("School updated", zap.Uint("id", school.ID), zap.String("domain", school.Domain))
	return c.JSON(http.StatusOK, school)
}

// Delete removes a school and all of its owned content permanently.
// Superuser only.
func (h *SchoolHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSchoolOperation("delete")

	var school model.School
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&school).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "school not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	err := h.db.Transaction(func(tx *gorm.DB) error {
		// Hard delete cascades to every owned row
		owned := []interface{}{
			&model.Menu{}, &model.Banner{}, &model.News{}, &model.NewsCategory{},
			&model.Staff{}, &model.Document{}, &model.Service{}, &model.FAQ{},
			&model.Vacancy{}, &model.SchoolLife{}, &model.ContactForm{},
			&model.EmailSubscription{},
		}
		for _, m := range owned {
			if err := tx.Where("school_id = ?", school.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&school).Error
	})
	if err != nil {
		log.Error("Failed to delete school", zap.Uint("id", school.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete school"})
	}

	if school.IsActive {
		prometheus.ActiveSchoolsGauge.Dec()
	}
	log.Info("School deleted", zap.Uint("id", school.ID), zap.String("domain", school.Domain))
	return c.JSON(http.StatusOK, echo.Map{"message": "school deleted successfully"})
}

// defaultMenuItem is one entry of the menu tree seeded for a new school
type defaultMenuItem struct {
	Title    string
	Children []string
}

// defaultMenuStructure mirrors the standard site navigation every new
// school starts with
var defaultMenuStructure = []defaultMenuItem{
	{Title: "Maktab", Children: []string{
		"Maktab haqida",
		"Rahbariyat va o'qituvchilar xodimlar",
		"Bo'sh ish o'rinlari",
	}},
	{Title: "Faoliyat", Children: []string{
		"Yo'nalishlar",
		"Tadbirlar",
		"Tanlov va festivallar",
		"Maktabimiz faxrlariz",
		"Mahorat darslari",
	}},
	{Title: "Ta'lim jarayoni", Children: []string{
		"O'quv reja va dastur",
		"Ta'limga oid ma'lumotlar",
		"Resurslar",
	}},
	{Title: "Matbuot", Children: []string{
		"Yangiliklar va e'lonlar",
		"Media",
	}},
	{Title: "Hujjatlar", Children: []string{
		"Rasmiy hujjatlar",
		"Ochiq ma'lumotlar",
	}},
	{Title: "Tijoriy bo'lim", Children: []string{
		"Madaniy xizmatlar",
		"Amaliy san'at",
		"Tasviriy san'at",
	}},
	{Title: "Bog'lanish"},
}

// seedDefaultMenus creates the default navigation tree for a new school
func seedDefaultMenus(tx *gorm.DB, school *model.School) error {
	for _, item := range defaultMenuStructure {
		parent := model.Menu{
			Title: item.Title,
			URL:   "#",
		}
		parent.IsActive = true
		parent.SetOwnerSchoolID(&school.ID)
		if err := tx.Create(&parent).Error; err != nil {
			return err
		}

		for _, childTitle := range item.Children {
			child := model.Menu{
				Title:    childTitle,
				URL:      "#",
				ParentID: &parent.ID,
			}
			child.IsActive = true
			child.SetOwnerSchoolID(&school.ID)
			if err := tx.Create(&child).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
