package repository

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/matzehuels/mavenresolve/pkg/errors"
	"github.com/matzehuels/mavenresolve/pkg/observability"
)

// S3Transport stores a repository in an S3 bucket, optionally below a key
// prefix. URLs have the form
//
//	s3://bucket/prefix?region=eu-west-1&endpoint=http://minio:9000
//
// A custom endpoint switches to path-style addressing.
type S3Transport struct {
	repoID string
	bucket string
	prefix string
	client *s3.Client
	opts   TransportOptions
}

// NewS3Transport returns a transport for the bucket named by rawURL.
// BasicAuth supplies a static access key pair; NoAuth uses the default AWS
// credential chain.
func NewS3Transport(ctx context.Context, repoID, rawURL string, auth Auth, opts TransportOptions) (*S3Transport, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid s3 repository URL %q", rawURL)
	}
	// AWS_CA_BUNDLE only works with the SDK's own buildable client.
	custom := opts.HTTPClient
	opts = opts.WithDefaults()
	q := u.Query()

	region := q.Get("region")
	if region == "" {
		region = "us-east-1"
	}
	cfgOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if custom != nil {
		cfgOpts = append(cfgOpts, config.WithHTTPClient(custom))
	}
	switch a := auth.(type) {
	case BasicAuth:
		cfgOpts = append(cfgOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(a.Username, a.Password, ""),
		))
	case KeyAuth:
		return nil, errors.New(errors.ErrCodeUnsupported, "key authentication is not supported for s3 repositories")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "load AWS config")
	}

	endpoint := q.Get("endpoint")
	pathStyle, _ := strconv.ParseBool(q.Get("path_style"))
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			pathStyle = true
		}
		o.UsePathStyle = pathStyle
		o.RetryMaxAttempts = opts.Attempts
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &S3Transport{
		repoID: repoID,
		bucket: u.Host,
		prefix: strings.Trim(u.Path, "/"),
		client: client,
		opts:   opts,
	}, nil
}

func (t *S3Transport) key(p string) string {
	if t.prefix == "" {
		return p
	}
	return t.prefix + "/" + p
}

// Get downloads the object for path.
func (t *S3Transport) Get(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reqCtx, cancel := context.WithTimeout(ctx, t.opts.Timeout)
	hooks := observability.Transfer()
	hooks.OnRequest(ctx, "GET", t.repoID, p)
	start := time.Now()

	out, err := t.client.GetObject(reqCtx, &s3.GetObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.key(p)),
	})
	if err != nil {
		cancel()
		return nil, t.classify(ctx, reqCtx, "GET", p, err, start)
	}
	hooks.OnResponse(ctx, "GET", t.repoID, p, 200, time.Since(start))
	return cancelOnClose{
		ReadCloser: codedReader{ReadCloser: out.Body, what: t.repoID + "/" + p},
		cancel:     cancel,
	}, nil
}

// Put uploads data as the object for path.
func (t *S3Transport) Put(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	reqCtx, cancel := context.WithTimeout(ctx, t.opts.Timeout)
	defer cancel()
	hooks := observability.Transfer()
	hooks.OnRequest(ctx, "PUT", t.repoID, p)
	start := time.Now()

	contentType := mime.TypeByExtension(path.Ext(p))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := t.client.PutObject(reqCtx, &s3.PutObjectInput{
		Bucket:        aws.String(t.bucket),
		Key:           aws.String(t.key(p)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		err = t.classify(ctx, reqCtx, "PUT", p, err, start)
		if errors.Is(err, errors.ErrCodeRepositoryUnreachable) || notFound(err) {
			err = errors.Wrap(errors.ErrCodeTransferFailed, err, "upload %s", p)
		}
		return err
	}
	hooks.OnResponse(ctx, "PUT", t.repoID, p, 200, time.Since(start))
	return nil
}

// classify maps SDK errors onto repository error codes.
func (t *S3Transport) classify(ctx, reqCtx context.Context, method, p string, err error, start time.Time) error {
	hooks := observability.Transfer()
	if ctx.Err() != nil {
		hooks.OnError(ctx, method, t.repoID, p, err)
		return ctx.Err()
	}

	var re *awshttp.ResponseError
	if errors.As(err, &re) && re.HTTPStatusCode() != 0 {
		hooks.OnResponse(ctx, method, t.repoID, p, re.HTTPStatusCode(), time.Since(start))
		if cerr := checkStatus(re.HTTPStatusCode(), method, t.repoID, p); cerr != nil {
			return errors.Wrap(errors.GetCode(cerr), err, "%s %s/%s", method, t.repoID, p)
		}
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return errors.Wrap(errors.ErrCodeArtifactNotFound, err, "%s not found in %s", p, t.repoID)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return errors.Wrap(errors.ErrCodeAuthenticationFailed, err, "%s %s/%s", method, t.repoID, p)
		}
	}

	hooks.OnError(ctx, method, t.repoID, p, err)
	if reqCtx.Err() != nil {
		return errors.Wrap(errors.ErrCodeRepositoryUnreachable, reqCtx.Err(), "%s %s/%s timed out", method, t.repoID, p)
	}
	return errors.Wrap(errors.ErrCodeRepositoryUnreachable, err, "%s %s/%s", method, t.repoID, p)
}

var _ Transport = (*S3Transport)(nil)
