package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"telecare-server/internal/middleware"
	"telecare-server/internal/models"
	"telecare-server/internal/utils"
)

// UserHandler handles user directory and admin operations.
type UserHandler struct {
	DB *gorm.DB
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// DoctorListing combines a doctor's account and practice profile for the
// booking directory.
type DoctorListing struct {
	User    models.UserSanitized `json:"user"`
	Profile models.DoctorProfile `json:"profile"`
}

// GetDoctors handles fetching the bookable doctor directory. Only approved
// doctors are listed.
func (h *UserHandler) GetDoctors(c *gin.Context) {
	var profiles []models.DoctorProfile
	query := h.DB.Preload("User").Where("status = ?", models.VerificationApproved)
	if specialty := c.Query("specialty"); specialty != "" {
		query = query.Where("specialty = ?", specialty)
	}
	if err := query.Find(&profiles).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	listings := make([]DoctorListing, len(profiles))
	for i, p := range profiles {
		listings[i] = DoctorListing{User: p.User.Sanitize(), Profile: p}
	}

	utils.Success(c, "Doctors fetched successfully", listings)
}

// UpdateDoctorProfileRequest represents the request body for a doctor
// updating their own practice details.
type UpdateDoctorProfileRequest struct {
	Specialty       string  `json:"specialty"`
	Bio             string  `json:"bio"`
	Location        string  `json:"location"`
	ExperienceYears int     `json:"experienceYears"`
	Price           float64 `json:"price"`
	Availability    string  `json:"availability"`
	LicenseDocument string  `json:"licenseDocument"`
}

// UpdateDoctorProfile lets a doctor update their practice profile, including
// uploading a license document URL for verification. Price changes only
// affect future bookings; existing consultations keep their booking price.
func (h *UserHandler) UpdateDoctorProfile(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req UpdateDoctorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	if req.Price < 0 {
		utils.BadRequest(c, "Price cannot be negative")
		return
	}

	var profile models.DoctorProfile
	if err := h.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		utils.NotFound(c, "Doctor profile not found")
		return
	}

	if req.Specialty != "" {
		profile.Specialty = req.Specialty
	}
	if req.Bio != "" {
		profile.Bio = req.Bio
	}
	if req.Location != "" {
		profile.Location = req.Location
	}
	if req.ExperienceYears > 0 {
		profile.ExperienceYears = req.ExperienceYears
	}
	if req.Price > 0 {
		profile.Price = req.Price
	}
	if req.Availability != "" {
		profile.Availability = req.Availability
	}
	if req.LicenseDocument != "" {
		profile.LicenseDocument = req.LicenseDocument
	}

	if err := h.DB.Save(&profile).Error; err != nil {
		utils.InternalServerError(c, "Failed to update doctor profile: "+err.Error())
		return
	}

	utils.Success(c, "Doctor profile updated successfully", profile)
}

// GetPendingVerifications handles listing doctors awaiting admin review.
func (h *UserHandler) GetPendingVerifications(c *gin.Context) {
	var profiles []models.DoctorProfile
	if err := h.DB.Preload("User").Where("status = ?", models.VerificationPending).Find(&profiles).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch pending verifications: "+err.Error())
		return
	}

	listings := make([]DoctorListing, len(profiles))
	for i, p := range profiles {
		listings[i] = DoctorListing{User: p.User.Sanitize(), Profile: p}
	}

	utils.Success(c, "Pending verifications fetched successfully", listings)
}

// VerificationRequest represents the admin's approve/reject decision.
type VerificationRequest struct {
	Status models.VerificationStatus `json:"status" binding:"required,oneof=approved rejected"`
}

// UpdateVerificationStatus handles an admin approving or rejecting a doctor.
func (h *UserHandler) UpdateVerificationStatus(c *gin.Context) {
	doctorUserID := c.Param("id")

	var req VerificationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var profile models.DoctorProfile
	if err := h.DB.Where("user_id = ?", doctorUserID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	profile.Status = req.Status
	if err := h.DB.Save(&profile).Error; err != nil {
		utils.InternalServerError(c, "Failed to update verification status: "+err.Error())
		return
	}

	utils.Success(c, "Verification status updated successfully", profile)
}

// CreateUserRequest represents the request body for creating a user by an admin.
type CreateUserRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"required,oneof=patient doctor admin"`
}

// CreateUser handles creating a new user (admin).
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existingUser models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	user := models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      models.Role(req.Role),
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	if err := h.DB.Create(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return
	}

	utils.Created(c, "User created successfully", user.Sanitize())
}

// GetUsers handles fetching all users (admin).
func (h *UserHandler) GetUsers(c *gin.Context) {
	var users []models.User
	query := h.DB
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if err := query.Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, len(users))
	for i, u := range users {
		sanitized[i] = u.Sanitize()
	}

	utils.Success(c, "Users fetched successfully", sanitized)
}

// GetUserByID handles fetching a single user by ID (admin).
func (h *UserHandler) GetUserByID(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "User fetched successfully", user.Sanitize())
}

// UpdateUserRequest represents the request body for updating a user by an admin.
type UpdateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
}

// UpdateUser handles updating a user by ID (admin).
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID := c.Param("id")

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Email != "" && req.Email != user.Email {
		var existing models.User
		if err := h.DB.Where("email = ? AND id <> ?", req.Email, user.ID).First(&existing).Error; err == nil {
			utils.BadRequest(c, "Another user already uses this email")
			return
		}
		user.Email = req.Email
	}

	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update user: "+err.Error())
		return
	}

	utils.Success(c, "User updated successfully", user.Sanitize())
}

// DeleteUser handles deleting a user by ID (admin).
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("id")

	res := h.DB.Delete(&models.User{}, "id = ?", userID)
	if res.Error != nil {
		utils.InternalServerError(c, "Failed to delete user: "+res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		utils.NotFound(c, "User not found")
		return
	}

	utils.Success(c, "User deleted successfully", nil)
}
