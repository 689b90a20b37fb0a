package meshgen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DefaultTimeout bounds one remote generation round trip.
const DefaultTimeout = 30 * time.Second

// Client generates meshes through the remote meshing API. The geometry
// file is uploaded as multipart form data and the response body is the
// generated mesh in legacy VTK format.
type Client struct {
	baseURL string
	dataDir string
	http    *http.Client
}

// NewClient returns a client for the meshing API at baseURL that writes
// generated meshes into dataDir.
func NewClient(baseURL, dataDir string) *Client {
	return &Client{
		baseURL: baseURL,
		dataDir: dataDir,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// SetTimeout overrides the request timeout.
func (c *Client) SetTimeout(d time.Duration) { c.http.Timeout = d }

// Generate uploads the geometry, waits for the meshed result, and writes
// it to the canonical generated-mesh path. Transport errors and non-200
// responses leave the data directory untouched.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	body, contentType, err := buildForm(req)
	if err != nil {
		return "", err
	}

	url := c.baseURL + "/generate-mesh"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("build mesh request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	log.Printf("meshgen: requesting mesh from %s (size factor %.3g)", url, req.MeshSizeFactor)
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("mesh service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("mesh service returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	mesh, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read mesh response: %w", err)
	}
	if len(mesh) == 0 {
		return "", fmt.Errorf("mesh service returned an empty body")
	}

	out := filepath.Join(c.dataDir, GeneratedMeshFile)
	if err := writeAtomic(out, mesh); err != nil {
		return "", err
	}
	log.Printf("meshgen: wrote %d bytes to %s", len(mesh), out)
	return out, nil
}

func buildForm(req Request) (io.Reader, string, error) {
	f, err := os.Open(req.GeometryPath)
	if err != nil {
		return nil, "", fmt.Errorf("open geometry: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filepath.Base(req.GeometryPath))
	if err != nil {
		return nil, "", fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("copy geometry into form: %w", err)
	}
	factor := req.MeshSizeFactor
	if factor <= 0 {
		factor = 1.0
	}
	if err := form.WriteField("mesh_size_factor", strconv.FormatFloat(factor, 'g', -1, 64)); err != nil {
		return nil, "", fmt.Errorf("build form: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, "", fmt.Errorf("finish form: %w", err)
	}
	return &buf, form.FormDataContentType(), nil
}

// writeAtomic writes through a temp file in the same directory so a
// failed write never clobbers a previously generated mesh.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".meshgen-*")
	if err != nil {
		return fmt.Errorf("stage generated mesh: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("stage generated mesh: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("stage generated mesh: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("commit generated mesh: %w", err)
	}
	return nil
}
