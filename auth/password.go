package auth

import (
	"errors"
	"regexp"
	"slices"
	"time"
)

// ValidatePassword 密码强度验证
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	if len(password) > 40 {
		return errors.New("password must be at most 40 characters long")
	}
	return nil
}

// ValidateEmail 验证邮箱格式
func ValidateEmail(email string) bool {
	// RFC 5322 标准的正则（相对严格）
	pattern := `^[a-zA-Z0-9.!#$%&'*+/=?^_{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`
	re := regexp.MustCompile(pattern)
	return re.MatchString(email)
}

// ValidateEmploymentType 验证就职类型是否合法
func ValidateEmploymentType(t string) bool {
	return t == "internship" || t == "full time"
}

// ValidateSeason 验证面试季节是否合法
func ValidateSeason(season string) bool {
	validSeasons := []string{"spring", "summer", "fall", "winter"}
	return slices.Contains(validSeasons, season)
}

// ValidateGraduationYear 验证毕业年份是否在合理区间
func ValidateGraduationYear(year int) bool {
	return year >= 1900 && year <= time.Now().Year()+10
}

// ValidateFullName 验证姓名长度
func ValidateFullName(name string) bool {
	return len(name) > 0 && len(name) <= 255
}
