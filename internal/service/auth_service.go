package service

import (
	"tgbot_backend/internal/config"
	"tgbot_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
)

// AuthService 网页后台的登录认证
type AuthService struct {
	Cfg *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{Cfg: cfg}
}

// Login 校验管理员账号密码，通过后签发JWT
func (s *AuthService) Login(username, password string) (string, error) {
	if username != s.Cfg.Admin.Username {
		return "", util.ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.Cfg.Admin.PasswordHash), []byte(password)); err != nil {
		return "", util.ErrBadCredentials
	}
	return util.GenerateJWT(username, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}
