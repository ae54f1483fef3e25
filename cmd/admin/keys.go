package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"resumeforge/internal/auth"
)

var keysOpts struct {
	outDir string
	bits   int
	force  bool
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "管理 JWT 签名密钥",
}

var keysGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "生成 RS256 密钥对（private.pem / public.pem）",
	RunE: func(cmd *cobra.Command, _ []string) error {
		privatePath, publicPath, err := writeKeyPair(keysOpts.outDir, keysOpts.bits, keysOpts.force)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "private key: %s\npublic key: %s\n", privatePath, publicPath)
		return nil
	},
}

func init() {
	keysGenerateCmd.Flags().StringVarP(&keysOpts.outDir, "out", "o", "keys", "输出目录")
	keysGenerateCmd.Flags().IntVar(&keysOpts.bits, "bits", auth.DefaultKeyBits, "RSA 位数")
	keysGenerateCmd.Flags().BoolVar(&keysOpts.force, "force", false, "覆盖已存在的密钥文件")
	keysCmd.AddCommand(keysGenerateCmd)
	rootCmd.AddCommand(keysCmd)
}

func writeKeyPair(dir string, bits int, force bool) (privatePath, publicPath string, err error) {
	privatePath = filepath.Join(dir, "private.pem")
	publicPath = filepath.Join(dir, "public.pem")

	if !force {
		for _, p := range []string{privatePath, publicPath} {
			if _, err := os.Stat(p); err == nil {
				return "", "", fmt.Errorf("%s already exists, use --force to overwrite", p)
			}
		}
	}

	privatePEM, publicPEM, err := auth.GenerateKeyPairPEM(bits)
	if err != nil {
		return "", "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", "", fmt.Errorf("create key dir: %w", err)
	}
	if err := os.WriteFile(privatePath, privatePEM, 0o600); err != nil {
		return "", "", fmt.Errorf("write private key: %w", err)
	}
	if err := os.WriteFile(publicPath, publicPEM, 0o644); err != nil {
		return "", "", fmt.Errorf("write public key: %w", err)
	}
	return privatePath, publicPath, nil
}
