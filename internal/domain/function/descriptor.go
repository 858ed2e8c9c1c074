package function

// Decision is the outcome of the create-vs-update reconciliation.
// It is recomputed on every invocation and never persisted.
type Decision string

const (
	// DecisionCreate means no remote resource with the target's name exists yet.
	DecisionCreate Decision = "create"
	// DecisionUpdate means a remote resource with the target's name already exists.
	DecisionUpdate Decision = "update"
)

// Descriptor is the registry's record of one deployed function. It is owned
// by the remote registry; this system only reads it and proposes updates.
type Descriptor struct {
	// Name is the function name as known to the registry.
	Name string `json:"name"`
	// ARN is the registry-assigned resource identifier.
	ARN string `json:"arn,omitempty"`
	// Runtime is the runtime identifier the function executes on.
	Runtime string `json:"runtime,omitempty"`
	// Handler is the configured entry point.
	Handler string `json:"handler,omitempty"`
	// Description is the stored human-readable summary.
	Description string `json:"description,omitempty"`
	// Timeout is the execution timeout in seconds.
	Timeout int32 `json:"timeout,omitempty"`
	// MemorySize is the memory allocation in megabytes.
	MemorySize int32 `json:"memory_size,omitempty"`
	// Role is the execution role identifier.
	Role string `json:"role,omitempty"`
	// CodeSHA256 is the registry's opaque digest of the deployed artifact.
	CodeSHA256 string `json:"code_sha256,omitempty"`
	// Version is the published version label, when the registry assigns one.
	Version string `json:"version,omitempty"`
	// LastModified is the registry-reported modification timestamp.
	LastModified string `json:"last_modified,omitempty"`
}
