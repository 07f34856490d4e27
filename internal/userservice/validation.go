package userservice

import (
	"strings"

	"github.com/sushihentaime/bloglist/internal/common"
)

func validateCreateUser(v *common.Validator, req *CreateUserRequest) {
	v.Struct(req)
	v.Check(strings.TrimSpace(req.Username) == req.Username, "username", "must not start or end with whitespace")
}

func validateLogin(v *common.Validator, req *LoginRequest) {
	v.Struct(req)
}
