package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"resumeforge/internal/auth"
	"resumeforge/internal/database"
)

var (
	errUserExists   = errors.New("user already exists")
	errUserNotFound = errors.New("user not found")
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "管理账号",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "创建账号并生成一次性初始密码，首次登录需强制改密",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		password, err := createUser(db, args[0])
		if err != nil {
			return err
		}
		printCredentials(cmd, "已创建账号（首次登录需强制改密）：", args[0], password)
		return nil
	},
}

var userResetCmd = &cobra.Command{
	Use:   "reset-password <username>",
	Short: "重置密码并要求下次登录改密",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		password, err := resetPassword(db, args[0])
		if err != nil {
			return err
		}
		printCredentials(cmd, "已重置密码（下次登录需强制改密）：", args[0], password)
		return nil
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd, userResetCmd)
	rootCmd.AddCommand(userCmd)
}

func createUser(db *gorm.DB, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", errors.New("username is required")
	}

	var existing database.User
	switch err := db.Where("username = ?", username).First(&existing).Error; {
	case err == nil:
		return "", fmt.Errorf("%w: %s", errUserExists, username)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return "", fmt.Errorf("query user: %w", err)
	}

	password, hashed, err := newTemporaryPassword()
	if err != nil {
		return "", err
	}
	user := database.User{
		Username:           username,
		PasswordHash:       hashed,
		MustChangePassword: true,
	}
	if err := db.Create(&user).Error; err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return password, nil
}

func resetPassword(db *gorm.DB, username string) (string, error) {
	password, hashed, err := newTemporaryPassword()
	if err != nil {
		return "", err
	}
	res := db.Model(&database.User{}).
		Where("username = ?", strings.TrimSpace(username)).
		Updates(map[string]any{"password_hash": hashed, "must_change_password": true})
	if res.Error != nil {
		return "", fmt.Errorf("reset password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return "", fmt.Errorf("%w: %s", errUserNotFound, username)
	}
	return password, nil
}

func newTemporaryPassword() (plain, hashed string, err error) {
	plain, err = auth.GenerateRandomPassword(24)
	if err != nil {
		return "", "", fmt.Errorf("generate password: %w", err)
	}
	hashed, err = auth.HashPassword(plain)
	if err != nil {
		return "", "", err
	}
	return plain, hashed, nil
}

func printCredentials(cmd *cobra.Command, title, username, password string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, title)
	fmt.Fprintf(out, "用户名: %s\n", username)
	fmt.Fprintf(out, "初始密码: %s\n", password)
	fmt.Fprintln(out, "提示：该密码仅显示一次，请立即登录并修改。")
}
