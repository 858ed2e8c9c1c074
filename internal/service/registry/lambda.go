package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/oshokin/lambda-deploy/internal/domain/function"
	"github.com/oshokin/lambda-deploy/internal/logger"
)

// LambdaAPI is the subset of the Lambda SDK client consumed by the registry.
// Narrowing the surface keeps tests free of real AWS calls.
type LambdaAPI interface {
	GetFunction(ctx context.Context, params *lambda.GetFunctionInput,
		optFns ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error)
	CreateFunction(ctx context.Context, params *lambda.CreateFunctionInput,
		optFns ...func(*lambda.Options)) (*lambda.CreateFunctionOutput, error)
	UpdateFunctionCode(ctx context.Context, params *lambda.UpdateFunctionCodeInput,
		optFns ...func(*lambda.Options)) (*lambda.UpdateFunctionCodeOutput, error)
	UpdateFunctionConfiguration(ctx context.Context, params *lambda.UpdateFunctionConfigurationInput,
		optFns ...func(*lambda.Options)) (*lambda.UpdateFunctionConfigurationOutput, error)
	ListFunctions(ctx context.Context, params *lambda.ListFunctionsInput,
		optFns ...func(*lambda.Options)) (*lambda.ListFunctionsOutput, error)
}

// S3API is the subset of the S3 SDK client used for artifact uploads.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput,
		optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// LambdaRegistry is the AWS Lambda implementation of the Registry contract.
// Artifact bytes travel inline by default; when an uploads bucket is
// configured they are staged as an S3 object and referenced from the
// create/update calls instead.
type LambdaRegistry struct {
	// client is the Lambda control-plane client.
	client LambdaAPI
	// uploads stages artifact objects when a bucket is configured.
	uploads S3API
	// bucket receives artifact objects; empty means inline payloads.
	bucket string
	// keyPrefix prefixes artifact object keys.
	keyPrefix string
}

// Option configures optional behavior of the Lambda registry.
type Option func(*LambdaRegistry)

// WithS3Uploads routes artifact bytes through an S3 object instead of an
// inline payload, which the registry caps at a few tens of megabytes.
func WithS3Uploads(client S3API, bucket, keyPrefix string) Option {
	return func(r *LambdaRegistry) {
		r.uploads = client
		r.bucket = bucket
		r.keyPrefix = keyPrefix
	}
}

// NewLambdaRegistry creates a registry backed by the provided clients.
func NewLambdaRegistry(client LambdaAPI, opts ...Option) *LambdaRegistry {
	registry := &LambdaRegistry{client: client}

	for _, opt := range opts {
		opt(registry)
	}

	return registry
}

// Connect loads ambient AWS configuration (environment, shared config,
// instance role) and builds a registry client from it.
func Connect(ctx context.Context, s3Bucket, s3KeyPrefix string) (*LambdaRegistry, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS configuration: %w", err)
	}

	opts := make([]Option, 0, 1)
	if s3Bucket != "" {
		opts = append(opts, WithS3Uploads(s3.NewFromConfig(cfg), s3Bucket, s3KeyPrefix))
	}

	return NewLambdaRegistry(lambda.NewFromConfig(cfg), opts...), nil
}

// Get looks up one function by name. Absence maps to ErrNotFound.
func (r *LambdaRegistry) Get(ctx context.Context, name string) (*function.Descriptor, error) {
	out, err := r.client.GetFunction(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(name),
	})
	if err != nil {
		return nil, mapError(err)
	}

	return descriptorFromConfiguration(out.Configuration), nil
}

// Create registers a new function with the full desired configuration and
// the artifact. The registry assigns the resource identifier.
func (r *LambdaRegistry) Create(
	ctx context.Context,
	target *function.Target,
	artifact []byte,
) (*function.Descriptor, error) {
	code, err := r.stageCode(ctx, target.Name, artifact)
	if err != nil {
		return nil, err
	}

	out, err := r.client.CreateFunction(ctx, &lambda.CreateFunctionInput{
		FunctionName: aws.String(target.Name),
		Runtime:      types.Runtime(target.Runtime),
		Role:         aws.String(target.Role),
		Handler:      aws.String(target.Handler),
		Description:  aws.String(target.Description),
		Timeout:      aws.Int32(target.Timeout),
		MemorySize:   aws.Int32(target.MemorySize),
		Code:         code,
		Publish:      true,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return descriptorFromConfiguration(&types.FunctionConfiguration{
		FunctionName: out.FunctionName,
		FunctionArn:  out.FunctionArn,
		Runtime:      out.Runtime,
		Handler:      out.Handler,
		Description:  out.Description,
		Timeout:      out.Timeout,
		MemorySize:   out.MemorySize,
		Role:         out.Role,
		CodeSha256:   out.CodeSha256,
		Version:      out.Version,
		LastModified: out.LastModified,
	}), nil
}

// Update replaces the remote code with the artifact, then overwrites the
// modeled configuration fields with the desired values. Remote-only fields
// the local model does not carry are left to the registry's own update
// semantics.
func (r *LambdaRegistry) Update(
	ctx context.Context,
	target *function.Target,
	artifact []byte,
) (*function.Descriptor, error) {
	code, err := r.stageCode(ctx, target.Name, artifact)
	if err != nil {
		return nil, err
	}

	_, err = r.client.UpdateFunctionCode(ctx, &lambda.UpdateFunctionCodeInput{
		FunctionName: aws.String(target.Name),
		ZipFile:      code.ZipFile,
		S3Bucket:     code.S3Bucket,
		S3Key:        code.S3Key,
		Publish:      true,
	})
	if err != nil {
		return nil, mapError(err)
	}

	out, err := r.client.UpdateFunctionConfiguration(ctx, &lambda.UpdateFunctionConfigurationInput{
		FunctionName: aws.String(target.Name),
		Runtime:      types.Runtime(target.Runtime),
		Role:         aws.String(target.Role),
		Handler:      aws.String(target.Handler),
		Description:  aws.String(target.Description),
		Timeout:      aws.Int32(target.Timeout),
		MemorySize:   aws.Int32(target.MemorySize),
	})
	if err != nil {
		return nil, mapError(err)
	}

	return descriptorFromConfiguration(&types.FunctionConfiguration{
		FunctionName: out.FunctionName,
		FunctionArn:  out.FunctionArn,
		Runtime:      out.Runtime,
		Handler:      out.Handler,
		Description:  out.Description,
		Timeout:      out.Timeout,
		MemorySize:   out.MemorySize,
		Role:         out.Role,
		CodeSha256:   out.CodeSha256,
		Version:      out.Version,
		LastModified: out.LastModified,
	}), nil
}

// List pages through every function visible to the credentials in use and
// returns them in the order the registry provides.
func (r *LambdaRegistry) List(ctx context.Context) ([]function.Descriptor, error) {
	var descriptors []function.Descriptor

	paginator := lambda.NewListFunctionsPaginator(r.client, &lambda.ListFunctionsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapError(err)
		}

		for i := range page.Functions {
			descriptors = append(descriptors, *descriptorFromConfiguration(&page.Functions[i]))
		}
	}

	return descriptors, nil
}

// stageCode prepares the code reference for a create/update call: an inline
// payload by default, or an uploaded S3 object when a bucket is configured.
func (r *LambdaRegistry) stageCode(ctx context.Context, name string, artifact []byte) (*types.FunctionCode, error) {
	if r.bucket == "" {
		return &types.FunctionCode{ZipFile: artifact}, nil
	}

	key := path.Join(r.keyPrefix, name+".zip")

	logger.InfoKV(ctx, "Uploading artifact to S3",
		"bucket", r.bucket,
		"key", key,
		"size_bytes", len(artifact))

	_, err := r.uploads.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(artifact),
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &types.FunctionCode{
		S3Bucket: aws.String(r.bucket),
		S3Key:    aws.String(key),
	}, nil
}

// descriptorFromConfiguration converts the SDK's view of a function into
// the domain descriptor.
func descriptorFromConfiguration(fc *types.FunctionConfiguration) *function.Descriptor {
	if fc == nil {
		return &function.Descriptor{}
	}

	return &function.Descriptor{
		Name:         aws.ToString(fc.FunctionName),
		ARN:          aws.ToString(fc.FunctionArn),
		Runtime:      string(fc.Runtime),
		Handler:      aws.ToString(fc.Handler),
		Description:  aws.ToString(fc.Description),
		Timeout:      aws.ToInt32(fc.Timeout),
		MemorySize:   aws.ToInt32(fc.MemorySize),
		Role:         aws.ToString(fc.Role),
		CodeSHA256:   aws.ToString(fc.CodeSha256),
		Version:      aws.ToString(fc.Version),
		LastModified: aws.ToString(fc.LastModified),
	}
}

// mapError translates SDK failures into the registry error taxonomy.
// API errors that match no known class are surfaced verbatim; non-API
// failures are treated as transient transport conditions.
func mapError(err error) error {
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, notFound.ErrorMessage())
	}

	var throttled *types.TooManyRequestsException
	if errors.As(err, &throttled) {
		return fmt.Errorf("%w: %s", ErrUnavailable, throttled.ErrorMessage())
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "RequestEntityTooLargeException", "CodeStorageExceededException", "EntityTooLarge":
			return fmt.Errorf("%w: %v", ErrPayloadTooLarge, err)
		case "AccessDeniedException", "UnrecognizedClientException",
			"InvalidSignatureException", "ExpiredTokenException", "AccessDenied":
			return fmt.Errorf("%w: %v", ErrAuth, err)
		case "ServiceException", "ServiceUnavailableException", "ThrottlingException", "SlowDown":
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		return err
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
