package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/errgroup"

	"resumeforge/internal/config"
)

// deleteConcurrency 限制按前缀清理时的并发删除数。
const deleteConcurrency = 8

// ObjectStore 是导出产物所需的最小对象存储接口。
type ObjectStore interface {
	UploadFile(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration, params map[string]string) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Client 封装 MinIO 客户端。内部客户端负责读写，公开客户端只用于签名下载链接。
type Client struct {
	internalClient *minio.Client
	publicClient   *minio.Client
	bucketName     string
}

var _ ObjectStore = (*Client)(nil)

// NewClient 根据配置初始化 MinIO 客户端，并确保目标 Bucket 存在。
func NewClient(ctx context.Context, cfg config.MinIOConfig) (*Client, error) {
	bucketLookup, err := parseBucketLookup(cfg.BucketLookup)
	if err != nil {
		return nil, err
	}

	creds := credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	internalClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:        creds,
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		BucketLookup: bucketLookup,
	})
	if err != nil {
		return nil, fmt.Errorf("init internal minio client: %w", err)
	}

	publicClient := internalClient
	if strings.TrimSpace(cfg.PublicEndpoint) != "" {
		parsed, err := url.Parse(cfg.PublicEndpoint)
		if err != nil {
			return nil, fmt.Errorf("parse minio public endpoint: %w", err)
		}
		if parsed.Host == "" {
			return nil, fmt.Errorf("invalid minio public endpoint %q, host missing", cfg.PublicEndpoint)
		}
		publicClient, err = minio.New(parsed.Host, &minio.Options{
			Creds:        creds,
			Secure:       parsed.Scheme == "https",
			Region:       cfg.Region,
			BucketLookup: bucketLookup,
		})
		if err != nil {
			return nil, fmt.Errorf("init public minio client: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := internalClient.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if !cfg.AutoCreateBucket {
			return nil, fmt.Errorf("bucket %q does not exist (auto create disabled)", cfg.Bucket)
		}
		if err := internalClient.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &Client{
		internalClient: internalClient,
		publicClient:   publicClient,
		bucketName:     cfg.Bucket,
	}, nil
}

func parseBucketLookup(raw string) (minio.BucketLookupType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "auto":
		return minio.BucketLookupAuto, nil
	case "dns":
		return minio.BucketLookupDNS, nil
	case "path":
		return minio.BucketLookupPath, nil
	default:
		return minio.BucketLookupAuto, fmt.Errorf("invalid minio bucket lookup %q", raw)
	}
}

// UploadFile 将对象上传到私有 Bucket。
func (c *Client) UploadFile(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := c.internalClient.PutObject(ctx, c.bucketName, objectKey, reader, size, opts); err != nil {
		return fmt.Errorf("put object %q: %w", objectKey, err)
	}
	return nil
}

// GeneratePresignedURL 生成限时下载链接，params 会作为 response-* 覆盖参数签入 URL。
func (c *Client) GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration, params map[string]string) (string, error) {
	var v url.Values
	if len(params) > 0 {
		v = url.Values{}
		for k, val := range params {
			v.Set(k, val)
		}
	}
	presignedURL, err := c.publicClient.PresignedGetObject(ctx, c.bucketName, objectKey, duration, v)
	if err != nil {
		return "", fmt.Errorf("generate presigned url for %q: %w", objectKey, err)
	}
	return presignedURL.String(), nil
}

// DeleteObject 删除指定对象，对象不存在视为成功。
func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	objectKey = strings.TrimSpace(objectKey)
	if objectKey == "" {
		return nil
	}
	if err := c.internalClient.RemoveObject(ctx, c.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		if IsNoSuchKey(err) {
			return nil
		}
		return fmt.Errorf("remove object %q: %w", objectKey, err)
	}
	return nil
}

// DeletePrefix 并发删除指定前缀下的所有对象，返回遇到的第一个错误。
func (c *Client) DeletePrefix(ctx context.Context, prefix string) error {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil
	}

	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	objCh := c.internalClient.ListObjects(listCtx, c.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteConcurrency)
	for object := range objCh {
		if object.Err != nil {
			cancel()
			_ = g.Wait()
			return fmt.Errorf("list objects under %q: %w", prefix, object.Err)
		}
		key := object.Key
		if strings.TrimSpace(key) == "" {
			continue
		}
		g.Go(func() error {
			return c.DeleteObject(gctx, key)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("delete objects under %q: %w", prefix, err)
	}
	return nil
}
