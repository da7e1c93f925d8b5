package api

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/erazemk/najdeno/internal/model"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// bcrypt ignores everything past 72 bytes.
const maxPasswordLength = 72

func usernameRules(value *string) *validation.FieldRules {
	return validation.Field(value, validation.Required, validation.Length(3, 50), validation.Match(usernamePattern))
}

func passwordRules(value *string) *validation.FieldRules {
	return validation.Field(value, validation.Required, validation.Length(0, maxPasswordLength),
		validation.By(checkPassword))
}

func checkPassword(value interface{}) error {
	password, _ := value.(string)
	return model.ValidatePassword(password)
}

func emailRules(value *string) *validation.FieldRules {
	return validation.Field(value, validation.Required, validation.Length(3, 254), is.Email)
}

func roleRules(value *string) *validation.FieldRules {
	return validation.Field(value, validation.Required, validation.In(model.RoleUser, model.RoleStaff, model.RoleAdmin))
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (r signupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		usernameRules(&r.Username),
		emailRules(&r.Email),
		passwordRules(&r.Password),
	)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r changePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		passwordRules(&r.NewPassword),
	)
}

type itemRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Location     string `json:"location"`
	DateReported string `json:"date_reported"`
	Status       string `json:"status"`
}

func (r itemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.Category, validation.Length(0, 100)),
		validation.Field(&r.Location, validation.Length(0, 200)),
		validation.Field(&r.DateReported, validation.Date("2006-01-02")),
		validation.Field(&r.Status, validation.Required,
			validation.In(model.ItemStatusLost, model.ItemStatusFound, model.ItemStatusClaimed)),
	)
}

func (r itemRequest) input() model.ItemInput {
	return model.ItemInput{
		Name:         r.Name,
		Description:  r.Description,
		Category:     r.Category,
		Location:     r.Location,
		DateReported: r.DateReported,
		Status:       r.Status,
	}
}

type createRequestRequest struct {
	ItemID  int64  `json:"item_id"`
	Message string `json:"message"`
}

func (r createRequestRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ItemID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Message, validation.Length(0, 1000)),
	)
}

type updateStatusRequest struct {
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes"`
}

func (r updateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required,
			validation.In(model.RequestStatusApproved, model.RequestStatusRejected)),
		validation.Field(&r.AdminNotes, validation.Length(0, 1000)),
	)
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r createUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		usernameRules(&r.Username),
		emailRules(&r.Email),
		passwordRules(&r.Password),
		roleRules(&r.Role),
	)
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func (r updateRoleRequest) Validate() error {
	return validation.ValidateStruct(&r, roleRules(&r.Role))
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (r resetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r, passwordRules(&r.Password))
}
