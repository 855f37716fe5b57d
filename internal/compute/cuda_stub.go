//go:build !cuda

package compute

type CUDABackend struct{}

func NewCUDABackend() *CUDABackend {
	return &CUDABackend{}
}

func (c *CUDABackend) Name() string    { return "cuda (not available)" }
func (c *CUDABackend) Available() bool { return false }
func (c *CUDABackend) Cleanup()        {}

func (c *CUDABackend) ChainForces(positions []float64, k, spacing float64) []float64 {
	cpu := NewCPUBackend()
	return cpu.ChainForces(positions, k, spacing)
}
