package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
)

type uploadResult struct {
	URL string `json:"url"`
}

// UploadImage sends the image as the "file" field of a multipart form and
// returns the hosted URL.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}
	resp, err := c.Do(ctx, http.MethodPost, "/upload", nil, WithRawBody(&buf, mw.FormDataContentType()))
	if err != nil {
		return "", err
	}
	return uploadURL(resp)
}

// UploadImageBase64 is the JSON variant of UploadImage.
func (c *Client) UploadImageBase64(ctx context.Context, data []byte) (string, error) {
	body := map[string]string{"file": base64.StdEncoding.EncodeToString(data)}
	resp, err := c.Do(ctx, http.MethodPost, "/upload", body)
	if err != nil {
		return "", err
	}
	return uploadURL(resp)
}

func uploadURL(resp *Response) (string, error) {
	var out uploadResult
	if err := resp.DecodeData(&out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", errors.New("upload response carries no url")
	}
	return out.URL, nil
}
