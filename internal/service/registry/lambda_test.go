package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/require"
)

// fakeLambdaAPI scripts the Lambda control-plane calls.
type fakeLambdaAPI struct {
	getErr        error
	created       *lambda.CreateFunctionInput
	codeUpdated   *lambda.UpdateFunctionCodeInput
	configUpdated *lambda.UpdateFunctionConfigurationInput
	pages         []*lambda.ListFunctionsOutput
	pageIndex     int
}

func (f *fakeLambdaAPI) GetFunction(_ context.Context, params *lambda.GetFunctionInput,
	_ ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}

	return &lambda.GetFunctionOutput{
		Configuration: &types.FunctionConfiguration{
			FunctionName: params.FunctionName,
			Runtime:      types.RuntimePython312,
		},
	}, nil
}

func (f *fakeLambdaAPI) CreateFunction(_ context.Context, params *lambda.CreateFunctionInput,
	_ ...func(*lambda.Options)) (*lambda.CreateFunctionOutput, error) {
	f.created = params

	return &lambda.CreateFunctionOutput{
		FunctionName: params.FunctionName,
		FunctionArn:  aws.String("arn:aws:lambda:us-east-1:123456789012:function:" + aws.ToString(params.FunctionName)),
		Runtime:      params.Runtime,
		Handler:      params.Handler,
		Description:  params.Description,
		Timeout:      params.Timeout,
		MemorySize:   params.MemorySize,
		Role:         params.Role,
		Version:      aws.String("1"),
	}, nil
}

func (f *fakeLambdaAPI) UpdateFunctionCode(_ context.Context, params *lambda.UpdateFunctionCodeInput,
	_ ...func(*lambda.Options)) (*lambda.UpdateFunctionCodeOutput, error) {
	f.codeUpdated = params

	return &lambda.UpdateFunctionCodeOutput{
		FunctionName: params.FunctionName,
		Version:      aws.String("2"),
	}, nil
}

func (f *fakeLambdaAPI) UpdateFunctionConfiguration(_ context.Context, params *lambda.UpdateFunctionConfigurationInput,
	_ ...func(*lambda.Options)) (*lambda.UpdateFunctionConfigurationOutput, error) {
	f.configUpdated = params

	return &lambda.UpdateFunctionConfigurationOutput{
		FunctionName: params.FunctionName,
		Runtime:      params.Runtime,
		Handler:      params.Handler,
		Description:  params.Description,
		Timeout:      params.Timeout,
		MemorySize:   params.MemorySize,
		Role:         params.Role,
		Version:      aws.String("2"),
	}, nil
}

func (f *fakeLambdaAPI) ListFunctions(_ context.Context, _ *lambda.ListFunctionsInput,
	_ ...func(*lambda.Options)) (*lambda.ListFunctionsOutput, error) {
	page := f.pages[f.pageIndex]
	f.pageIndex++

	return page, nil
}

// fakeS3API records uploaded objects.
type fakeS3API struct {
	puts []*s3.PutObjectInput
}

func (f *fakeS3API) PutObject(_ context.Context, params *s3.PutObjectInput,
	_ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, params)

	return &s3.PutObjectOutput{}, nil
}

// TestLambdaRegistryGetNotFound maps the SDK's resource-not-found onto the
// registry taxonomy.
func TestLambdaRegistryGetNotFound(t *testing.T) {
	t.Parallel()

	api := &fakeLambdaAPI{getErr: &types.ResourceNotFoundException{
		Message: aws.String("Function not found"),
	}}

	_, err := NewLambdaRegistry(api).Get(context.Background(), "foo")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotFound))
}

// TestLambdaRegistryCreateInline verifies the create call carries the full
// desired configuration and the inline artifact bytes.
func TestLambdaRegistryCreateInline(t *testing.T) {
	t.Parallel()

	api := &fakeLambdaAPI{}
	artifact := []byte("zip-bytes")

	descriptor, err := NewLambdaRegistry(api).Create(context.Background(), validTarget(), artifact)
	require.NoError(t, err)
	require.Equal(t, "foo", descriptor.Name)
	require.Equal(t, "1", descriptor.Version)
	require.NotEmpty(t, descriptor.ARN)

	require.NotNil(t, api.created)
	require.Equal(t, artifact, api.created.Code.ZipFile)
	require.Equal(t, "foo", aws.ToString(api.created.FunctionName))
	require.Equal(t, types.Runtime("python3.12"), api.created.Runtime)
	require.Equal(t, int32(30), aws.ToInt32(api.created.Timeout))
	require.Equal(t, int32(256), aws.ToInt32(api.created.MemorySize))
	require.True(t, api.created.Publish)
}

// TestLambdaRegistryUpdate verifies full-overwrite update semantics: both
// the code and every modeled configuration field are replaced.
func TestLambdaRegistryUpdate(t *testing.T) {
	t.Parallel()

	api := &fakeLambdaAPI{}
	artifact := []byte("new-zip-bytes")

	descriptor, err := NewLambdaRegistry(api).Update(context.Background(), validTarget(), artifact)
	require.NoError(t, err)
	require.Equal(t, "2", descriptor.Version)

	require.NotNil(t, api.codeUpdated)
	require.Equal(t, artifact, api.codeUpdated.ZipFile)
	require.True(t, api.codeUpdated.Publish)

	require.NotNil(t, api.configUpdated)
	require.Equal(t, "lambda_function.lambda_handler", aws.ToString(api.configUpdated.Handler))
	require.Equal(t, int32(30), aws.ToInt32(api.configUpdated.Timeout))
	require.Equal(t, int32(256), aws.ToInt32(api.configUpdated.MemorySize))
	require.Equal(t, "arn:aws:iam::123456789012:role/lambda", aws.ToString(api.configUpdated.Role))
}

// TestLambdaRegistryS3Uploads routes artifact bytes through the configured
// bucket and references the object from the create call.
func TestLambdaRegistryS3Uploads(t *testing.T) {
	t.Parallel()

	api := &fakeLambdaAPI{}
	uploads := &fakeS3API{}

	reg := NewLambdaRegistry(api, WithS3Uploads(uploads, "artifacts", "lambdas"))

	_, err := reg.Create(context.Background(), validTarget(), []byte("zip-bytes"))
	require.NoError(t, err)

	require.Len(t, uploads.puts, 1)
	require.Equal(t, "artifacts", aws.ToString(uploads.puts[0].Bucket))
	require.Equal(t, "lambdas/foo.zip", aws.ToString(uploads.puts[0].Key))

	require.Nil(t, api.created.Code.ZipFile)
	require.Equal(t, "artifacts", aws.ToString(api.created.Code.S3Bucket))
	require.Equal(t, "lambdas/foo.zip", aws.ToString(api.created.Code.S3Key))
}

// TestLambdaRegistryList pages through the registry and preserves its order.
func TestLambdaRegistryList(t *testing.T) {
	t.Parallel()

	api := &fakeLambdaAPI{pages: []*lambda.ListFunctionsOutput{
		{
			Functions: []types.FunctionConfiguration{
				{FunctionName: aws.String("alpha")},
				{FunctionName: aws.String("beta")},
			},
			NextMarker: aws.String("more"),
		},
		{
			Functions: []types.FunctionConfiguration{
				{FunctionName: aws.String("gamma")},
			},
		},
	}}

	descriptors, err := NewLambdaRegistry(api).List(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(descriptors))
	for _, descriptor := range descriptors {
		names = append(names, descriptor.Name)
	}

	require.Equal(t, []string{"alpha", "beta", "gamma"}, names)
}

// TestMapError covers the taxonomy translation for the SDK error classes.
func TestMapError(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		err      error
		expected error
	}{
		"not found": {
			err:      &types.ResourceNotFoundException{Message: aws.String("gone")},
			expected: ErrNotFound,
		},
		"throttled": {
			err:      &types.TooManyRequestsException{Message: aws.String("slow down")},
			expected: ErrUnavailable,
		},
		"auth": {
			err:      &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "denied"},
			expected: ErrAuth,
		},
		"payload too large": {
			err:      &smithy.GenericAPIError{Code: "RequestEntityTooLargeException", Message: "too big"},
			expected: ErrPayloadTooLarge,
		},
		"service down": {
			err:      &smithy.GenericAPIError{Code: "ServiceUnavailableException", Message: "down"},
			expected: ErrUnavailable,
		},
		"network": {
			err:      errors.New("connection reset"),
			expected: ErrUnavailable,
		},
	}

	for name, tc := range cases {
		tc := tc

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			require.True(t, errors.Is(mapError(tc.err), tc.expected))
		})
	}
}

// TestMapErrorPassthrough leaves unclassified API errors untouched so the
// registry's own message reaches the operator verbatim.
func TestMapErrorPassthrough(t *testing.T) {
	t.Parallel()

	original := &smithy.GenericAPIError{Code: "InvalidParameterValueException", Message: "bad role"}
	require.Equal(t, error(original), mapError(original))
}
