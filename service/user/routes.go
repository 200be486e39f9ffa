package user

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	mathrand "math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gopkg.in/gomail.v2"

	"github.com/GetStream/stream-chat-go/v5"
	"github.com/Amoako-T/Medlink-server/cmd/models"
	"github.com/Amoako-T/Medlink-server/cmd/utils"
	"github.com/Amoako-T/Medlink-server/service/schedule"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// RegisterRoutes sets up all account and doctor-directory routes
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/login", h.handleLogin).Methods("POST")
	router.HandleFunc("/register", h.HandleRegister).Methods("POST")
	router.HandleFunc("/users/{id}", utils.AuthMiddleware(h.GetUser)).Methods("GET")
	router.HandleFunc("/users/{id}/picture", utils.AuthMiddleware(h.UpdateProfilePicture)).Methods("PUT")
	router.HandleFunc("/user/verify", h.verifyUser).Methods("POST")
	router.HandleFunc("/refresh", h.handleRefreshToken).Methods("POST")
	router.HandleFunc("/reset-password", h.handlePasswordResetRequest).Methods("POST")
	router.HandleFunc("/reset-password/{userId}/confirm", h.handlePasswordReset).Methods("POST")
	router.HandleFunc("/verify-reset-token", h.handleVerifyResetToken).Methods("POST")
	router.HandleFunc("/doctors", h.GetDoctors).Methods("GET")
	router.HandleFunc("/doctors/{id}", h.GetDoctor).Methods("GET")
	router.HandleFunc("/doctors/{id}", utils.AuthMiddleware(h.UpdateDoctor)).Methods("PUT")
	router.HandleFunc("/doctors/{id}/working-hours", utils.AuthMiddleware(h.UpdateWorkingHours)).Methods("PUT")
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
    var loginRequest struct {
        Email    string `json:"email"`
        Password string `json:"password"`
    }

    if err := json.NewDecoder(r.Body).Decode(&loginRequest); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    var user models.User
    result := h.db.Where("email = ?", loginRequest.Email).First(&user)
    if result.Error != nil {
        http.Error(w, "User not found", http.StatusUnauthorized)
        return
    }

    // Verify password
    if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(loginRequest.Password)); err != nil {
        http.Error(w, "Invalid credentials", http.StatusUnauthorized)
        return
    }

    accessToken, err := generateJWT(user.ID, 7500)
    if err != nil {
        http.Error(w, "Error generating access token", http.StatusInternalServerError)
        return
    }

    refreshToken, err := generateRefreshToken(user.ID)
    if err != nil {
        http.Error(w, "Error generating refresh token", http.StatusInternalServerError)
        return
    }

    if err := saveRefreshToken(h.db, user.ID, refreshToken); err != nil {
        http.Error(w, "Error saving refresh token", http.StatusInternalServerError)
        return
    }

    // Initialize Stream Chat client for care-team messaging
    API_KEY := os.Getenv("STREAM_API_KEY")
    API_SECRET := os.Getenv("STREAM_API_SECRET")
    streamClient, err := stream_chat.NewClient(API_KEY, API_SECRET)
    if err != nil {
        http.Error(w, "Error initializing Stream client", http.StatusInternalServerError)
        return
    }

    userIDStr := fmt.Sprintf("%d", user.ID)
    streamToken, err := streamClient.CreateToken(userIDStr, time.Now().Add(time.Hour*24*365))
    if err != nil {
        http.Error(w, "Error generating Stream token", http.StatusInternalServerError)
        return
    }

    response := map[string]interface{}{
        "message":       "Login successful",
        "access_token":  accessToken,
        "refresh_token": refreshToken,
        "user_id":       user.ID,
        "stream_token":  streamToken,
    }

    // If the user is a doctor, include the doctor profile ID
    if user.Role == "doctor" {
        var doctor models.Doctor
        result := h.db.Where("user_id = ?", user.ID).First(&doctor)
        if result.Error == nil {
            response["doctor_id"] = doctor.ID
        } else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
            http.Error(w, "Error fetching doctor profile", http.StatusInternalServerError)
            return
        }
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(response)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
    var registerRequest struct {
        FullName     string `json:"full_name"`
        Email        string `json:"email"`
        Password     string `json:"password"`
        Phone        string `json:"phone"`
        Role         string `json:"role"`
        Specialty    string `json:"specialty"`
        Bio          string `json:"bio"`
        WorkingHours string `json:"working_hours"`
    }
    if err := json.NewDecoder(r.Body).Decode(&registerRequest); err != nil {
        http.Error(w, "Invalid JSON input", http.StatusBadRequest)
        return
    }
    if registerRequest.FullName == "" || registerRequest.Email == "" || registerRequest.Password == "" || registerRequest.Phone == "" || registerRequest.Role == "" {
        http.Error(w, "Missing required fields", http.StatusBadRequest)
        return
    }
    if registerRequest.Role != "patient" && registerRequest.Role != "doctor" && registerRequest.Role != "admin" {
        http.Error(w, "Role must be patient, doctor or admin", http.StatusBadRequest)
        return
    }

    var existingUser models.User
    if result := h.db.Where("email = ? OR phone = ?", registerRequest.Email, registerRequest.Phone).First(&existingUser); !errors.Is(result.Error, gorm.ErrRecordNotFound) {
        if result.Error != nil {
            http.Error(w, "Database error", http.StatusInternalServerError)
            return
        }

        var errorMessage string
        if existingUser.Email == registerRequest.Email && existingUser.Phone == registerRequest.Phone {
            errorMessage = "Email and phone number are already in use"
        } else if existingUser.Email == registerRequest.Email {
            errorMessage = "Email is already in use"
        } else {
            errorMessage = "Phone number is already in use"
        }
        log.Printf("Registration attempt with duplicate %s", errorMessage)
        http.Error(w, errorMessage, http.StatusConflict)
        return
    }

    passwordHash, err := bcrypt.GenerateFromPassword([]byte(registerRequest.Password), bcrypt.DefaultCost)
    if err != nil {
        http.Error(w, "Error hashing password", http.StatusInternalServerError)
        return
    }

    verificationCode := fmt.Sprintf("%06d", mathrand.Intn(1000000))
    verificationExpiry := time.Now().Add(15 * time.Minute)

    tx := h.db.Begin()

    user := models.User{
        FullName:              registerRequest.FullName,
        Email:                 registerRequest.Email,
        PasswordHash:          string(passwordHash),
        Phone:                 registerRequest.Phone,
        Role:                  registerRequest.Role,
        PhoneVerified:         false,
        EmailVerificationCode: verificationCode,
        VerificationExpiry:    verificationExpiry,
    }

    if err := tx.Create(&user).Error; err != nil {
        if strings.Contains(err.Error(), "UNIQUE constraint") || strings.Contains(err.Error(), "duplicate key") {
            log.Printf("Unique constraint violation during user creation: %v", err)
            tx.Rollback()
            http.Error(w, "Email or phone number is already in use", http.StatusConflict)
            return
        }
        tx.Rollback()
        http.Error(w, "Error registering user", http.StatusInternalServerError)
        return
    }

    var doctorID uint
    if registerRequest.Role == "doctor" {
        if err := validateWorkingHours(registerRequest.WorkingHours); err != nil {
            tx.Rollback()
            http.Error(w, err.Error(), http.StatusBadRequest)
            return
        }

        doctor := models.Doctor{
            UserID:       user.ID,
            Specialty:    registerRequest.Specialty,
            Bio:          registerRequest.Bio,
            WorkingHours: registerRequest.WorkingHours,
        }

        if err := tx.Create(&doctor).Error; err != nil {
            tx.Rollback()
            http.Error(w, "Error creating doctor profile", http.StatusInternalServerError)
            return
        }
        doctorID = doctor.ID
    }

    if err := tx.Commit().Error; err != nil {
        http.Error(w, "Error committing transaction", http.StatusInternalServerError)
        return
    }

    go func() {
        if err := sendVerificationEmail(user.Email, verificationCode); err != nil {
            log.Printf("Error sending verification email: %v", err)
        }
    }()

    w.Header().Set("Content-Type", "application/json")
    response := map[string]interface{}{
        "message": "User registered successfully. Please check your email for verification code.",
        "user_id": user.ID,
    }
    if doctorID != 0 {
        response["doctor_id"] = doctorID
    }
    json.NewEncoder(w).Encode(response)
}

// validateWorkingHours checks every configured slot origin parses as HH:MM.
func validateWorkingHours(workingHours string) error {
	if strings.TrimSpace(workingHours) == "" {
		return nil
	}
	for _, origin := range strings.Split(workingHours, ",") {
		if _, err := schedule.ParseClock(origin); err != nil {
			return fmt.Errorf("invalid working hours: %v", err)
		}
	}
	return nil
}

// sendVerificationEmail sends a verification email with the 6-digit code
func sendVerificationEmail(email, code string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Email Verification Code")
	m.SetBody("text/plain", fmt.Sprintf("Your verification code is: %s. Ignore this email if you did not request a verification code.", code))

	port, err := strconv.Atoi(smtpPort)
	if err != nil {
		return fmt.Errorf("invalid SMTP port: %v", err)
	}
	d := gomail.NewDialer(smtpHost, port, smtpUser, smtpPass)

	return d.DialAndSend(m)
}

func (h *Handler) verifyUser(w http.ResponseWriter, r *http.Request) {
    var request struct {
        Email string `json:"email"`
        Code  string `json:"code"`
    }

    if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    var user models.User
    if err := h.db.Where("email = ?", request.Email).First(&user).Error; err != nil {
        http.Error(w, "User not found", http.StatusNotFound)
        return
    }

    if user.EmailVerificationCode != request.Code || time.Now().After(user.VerificationExpiry) {
        http.Error(w, "Invalid or expired verification code", http.StatusUnauthorized)
        return
    }

    user.EmailVerified = true
    user.EmailVerificationCode = ""
    user.VerificationExpiry = time.Time{}
    user.Status = "active"

    if err := h.db.Save(&user).Error; err != nil {
        http.Error(w, "Error updating user", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]string{
        "message": "Email verified successfully",
    })
}

// GetUser retrieves a specific user by ID
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var user models.User
	if err := h.db.Preload("Doctor").First(&user, userID).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// UpdateProfilePicture stores an uploaded profile image for the user
func (h *Handler) UpdateProfilePicture(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    userID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid user ID", http.StatusBadRequest)
        return
    }

    var user models.User
    if err := h.db.First(&user, userID).Error; err != nil {
        http.Error(w, "User not found", http.StatusNotFound)
        return
    }

    if err := r.ParseMultipartForm(utils.MaxImageSize); err != nil {
        http.Error(w, "Error parsing form data", http.StatusBadRequest)
        return
    }

    file, header, err := r.FormFile("picture")
    if err != nil {
        http.Error(w, "Picture file is required", http.StatusBadRequest)
        return
    }
    defer file.Close()

    imageURL, err := utils.SaveImage(file, header)
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }

    if user.ProfilePicturePath != "" {
        if err := utils.DeleteImage(user.ProfilePicturePath); err != nil {
            log.Printf("Error deleting old profile picture: %v", err)
        }
    }

    user.ProfilePicturePath = imageURL
    if err := h.db.Save(&user).Error; err != nil {
        http.Error(w, "Error updating user", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]string{
        "message":              "Profile picture updated successfully",
        "profile_picture_path": imageURL,
    })
}

func (h *Handler) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
    var refreshRequest struct {
        RefreshToken string `json:"refresh_token"`
    }

    if err := json.NewDecoder(r.Body).Decode(&refreshRequest); err != nil {
        http.Error(w, "Invalid request", http.StatusBadRequest)
        return
    }

    tx := h.db.Begin()

    var user models.User
    if err := tx.Where("refresh_token = ?", refreshRequest.RefreshToken).First(&user).Error; err != nil {
        tx.Rollback()
        http.Error(w, "Invalid refresh token", http.StatusUnauthorized)
        return
    }

    if user.RefreshTokenExpiredAt.Before(time.Now()) {
        tx.Rollback()
        log.Printf("Expired refresh token for user ID: %d", user.ID)
        http.Error(w, "Refresh token expired", http.StatusUnauthorized)
        return
    }

    newAccessToken, err := generateJWT(user.ID, 15)
    if err != nil {
        tx.Rollback()
        http.Error(w, "Error generating new token", http.StatusInternalServerError)
        return
    }

    // Rotate the refresh token
    newRefreshToken, err := generateRefreshToken(user.ID)
    if err != nil {
        tx.Rollback()
        http.Error(w, "Error generating refresh token", http.StatusInternalServerError)
        return
    }

    updateResult := tx.Model(&user).Updates(models.User{
        Refresh:               newRefreshToken,
        RefreshTokenExpiredAt: time.Now().Add(30 * 24 * time.Hour),
    })
    if updateResult.Error != nil {
        tx.Rollback()
        http.Error(w, "Error updating refresh token", http.StatusInternalServerError)
        return
    }

    if err := tx.Commit().Error; err != nil {
        http.Error(w, "Internal server error", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "access_token":  newAccessToken,
        "refresh_token": newRefreshToken,
    })
}

var jwtSecretKey = []byte(os.Getenv("SECRET_KEY"))

func generateJWT(userID uint, expirationMinutes int) (string, error) {
    claims := &jwt.RegisteredClaims{
        Subject:   fmt.Sprint(userID),
        ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute * time.Duration(expirationMinutes))),
    }
    token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return token.SignedString(jwtSecretKey)
}

func generateRefreshToken(userID uint) (string, error) {
    b := make([]byte, 32)
    if _, err := rand.Read(b); err != nil {
        return "", err
    }

    // HMAC ties the token to the user
    mac := hmac.New(sha256.New, []byte(os.Getenv("SECRET_KEY")))
    mac.Write([]byte(fmt.Sprintf("%d", userID)))
    mac.Write(b)

    signature := mac.Sum(nil)
    return fmt.Sprintf("%d_%x_%x", userID, b, signature), nil
}

func saveRefreshToken(db *gorm.DB, userID uint, refreshToken string) error {
    expirationTime := time.Now().Add(30 * 24 * time.Hour)
    return db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
        "refresh_token":            refreshToken,
        "refresh_token_expired_at": expirationTime,
    }).Error
}

func (h *Handler) handlePasswordResetRequest(w http.ResponseWriter, r *http.Request) {
    var resetRequest struct {
        Email string `json:"email"`
    }

    if err := json.NewDecoder(r.Body).Decode(&resetRequest); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    if resetRequest.Email == "" {
        http.Error(w, "Email is required", http.StatusBadRequest)
        return
    }

    var user models.User
    result := h.db.Where("email = ?", resetRequest.Email).First(&user)
    if result.Error != nil {
        // Keep response vague for security
        w.Header().Set("Content-Type", "application/json")
        json.NewEncoder(w).Encode(map[string]string{
            "message": "If an account exists, a reset code will be sent to your email",
        })
        return
    }

    resetToken := fmt.Sprintf("%06d", mathrand.Intn(1000000))

    tx := h.db.Begin()

    if err := tx.Where("user_id = ?", user.ID).Delete(&models.PasswordResetToken{}).Error; err != nil {
        tx.Rollback()
        http.Error(w, "Error processing reset request", http.StatusInternalServerError)
        return
    }

    passwordResetToken := models.PasswordResetToken{
        UserID:    user.ID,
        Token:     resetToken,
        ExpiresAt: time.Now().Add(5 * time.Minute),
    }

    if err := tx.Create(&passwordResetToken).Error; err != nil {
        tx.Rollback()
        http.Error(w, "Error creating reset token", http.StatusInternalServerError)
        return
    }

    if err := tx.Commit().Error; err != nil {
        http.Error(w, "Error processing reset request", http.StatusInternalServerError)
        return
    }

    if err := sendVerificationEmail(user.Email, resetToken); err != nil {
        http.Error(w, "Error sending email", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]string{
        "message": "If an account exists, a reset code will be sent to your email",
    })
}

func (h *Handler) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    userID, err := strconv.ParseUint(vars["userId"], 10, 32)
    if err != nil {
        http.Error(w, "Invalid user ID", http.StatusBadRequest)
        return
    }

    var resetRequest struct {
        Password string `json:"password"`
    }

    if err := json.NewDecoder(r.Body).Decode(&resetRequest); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    if len(resetRequest.Password) < 6 {
        http.Error(w, "Password must be at least 6 characters long", http.StatusBadRequest)
        return
    }

    tx := h.db.Begin()

    var user models.User
    if err := tx.First(&user, userID).Error; err != nil {
        tx.Rollback()
        http.Error(w, "User not found", http.StatusNotFound)
        return
    }

    passwordHash, err := bcrypt.GenerateFromPassword([]byte(resetRequest.Password), bcrypt.DefaultCost)
    if err != nil {
        tx.Rollback()
        http.Error(w, "Error hashing password", http.StatusInternalServerError)
        return
    }

    user.PasswordHash = string(passwordHash)
    if err := tx.Save(&user).Error; err != nil {
        tx.Rollback()
        http.Error(w, "Error updating password", http.StatusInternalServerError)
        return
    }

    if err := tx.Commit().Error; err != nil {
        http.Error(w, "Error processing password reset", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]string{
        "message": "Password reset successful",
    })
}

func (h *Handler) handleVerifyResetToken(w http.ResponseWriter, r *http.Request) {
    var req struct {
        Email string `json:"email"`
        Token string `json:"token"`
    }

    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    var user models.User
    if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
        http.Error(w, "Invalid email or token", http.StatusUnauthorized)
        return
    }

    var resetToken models.PasswordResetToken
    if err := h.db.Where("user_id = ? AND token = ?", user.ID, req.Token).First(&resetToken).Error; err != nil {
        http.Error(w, "Invalid email or token", http.StatusUnauthorized)
        return
    }

    if time.Now().After(resetToken.ExpiresAt) {
        http.Error(w, "Token expired", http.StatusUnauthorized)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "message": "Token verified",
        "user_id": user.ID,
    })
}

// GetDoctors lists the doctor directory
func (h *Handler) GetDoctors(w http.ResponseWriter, r *http.Request) {
    page, _ := strconv.Atoi(r.URL.Query().Get("page"))
    if page < 1 {
        page = 1
    }
    pageSize := 20

    query := h.db.Model(&models.Doctor{}).Preload("User")

    if specialty := r.URL.Query().Get("specialty"); specialty != "" {
        query = query.Where("specialty ILIKE ?", "%"+specialty+"%")
    }
    if verified := r.URL.Query().Get("verified"); verified != "" {
        query = query.Where("verified = ?", verified == "true")
    }

    var total int64
    query.Count(&total)

    var doctors []models.Doctor
    if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&doctors).Error; err != nil {
        http.Error(w, "Error retrieving doctors", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "doctors":     doctors,
        "total":       total,
        "page":        page,
        "page_size":   pageSize,
        "total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
    })
}

// GetDoctor retrieves one doctor profile
func (h *Handler) GetDoctor(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    doctorID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid doctor ID", http.StatusBadRequest)
        return
    }

    var doctor models.Doctor
    if err := h.db.Preload("User").First(&doctor, doctorID).Error; err != nil {
        http.Error(w, "Doctor not found", http.StatusNotFound)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(doctor)
}

// UpdateDoctor updates the doctor's profile fields
func (h *Handler) UpdateDoctor(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    doctorID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid doctor ID", http.StatusBadRequest)
        return
    }

    var updateData struct {
        Specialty string `json:"specialty"`
        Bio       string `json:"bio"`
    }
    if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    var doctor models.Doctor
    if err := h.db.First(&doctor, doctorID).Error; err != nil {
        http.Error(w, "Doctor not found", http.StatusNotFound)
        return
    }

    doctor.Specialty = updateData.Specialty
    doctor.Bio = updateData.Bio

    if err := h.db.Save(&doctor).Error; err != nil {
        http.Error(w, "Error updating doctor", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(doctor)
}

// UpdateWorkingHours replaces a doctor's configured slot origins
func (h *Handler) UpdateWorkingHours(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    doctorID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid doctor ID", http.StatusBadRequest)
        return
    }

    var updateData struct {
        WorkingHours string `json:"working_hours"`
    }
    if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    if err := validateWorkingHours(updateData.WorkingHours); err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }

    var doctor models.Doctor
    if err := h.db.First(&doctor, doctorID).Error; err != nil {
        http.Error(w, "Doctor not found", http.StatusNotFound)
        return
    }

    doctor.WorkingHours = updateData.WorkingHours
    if err := h.db.Save(&doctor).Error; err != nil {
        http.Error(w, "Error updating working hours", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(doctor)
}
