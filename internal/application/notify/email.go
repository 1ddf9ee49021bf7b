package notify

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/restock-api/internal/domain"
)

// restockHTML renders the back-in-stock email from a cached request snapshot.
// Everything it needs was denormalized at signup time.
var restockHTML = template.Must(template.New("restock").Parse(`<div style="font-family: 'Roboto', Arial, sans-serif; color: #2b2b2b; padding: 24px; max-width: 600px; margin: auto; background: #ffffff; border: 1px solid #e0e0e0; border-radius: 8px;">
  <h2 style="color: #1a1a1a; font-size: 22px; margin-bottom: 8px;">{{.ProductTitle}} is Back in Stock!</h2>
  <p style="font-size: 16px;">Hi {{.Name}},</p>
  <p style="font-size: 16px; margin-top: 0;">Good news! The product{{if .VariantTitle}} variant <strong>{{.VariantTitle}}</strong>{{end}} you were waiting for is now available again.</p>
  {{if .ProductImage}}<div style="text-align: center; margin: 20px 0;">
    <img src="{{.ProductImage}}" alt="{{.ProductTitle}}" style="max-width: 100%; height: auto; border-radius: 6px;" />
  </div>{{end}}
  <div style="text-align: center; margin: 25px 0;">
    <a href="{{.ProductURL}}" style="background: #007bff; color: white; text-decoration: none; padding: 12px 24px; font-size: 16px; border-radius: 6px; display: inline-block;">View Product</a>
  </div>
  <p style="font-size: 14px; color: #777; text-align: right;">Thank you for your interest!<br/>&ndash; {{.StoreName}}</p>
</div>`))

type restockEmail struct {
	Name         string
	ProductTitle string
	VariantTitle string
	ProductImage string
	ProductURL   string
	StoreName    string
}

// renderRestockEmail builds the subject and HTML body for one subscriber.
func renderRestockEmail(req *domain.NotificationRequest) (subject, body string, err error) {
	data := restockEmail{
		Name:         req.Name,
		ProductTitle: req.ProductTitle,
		VariantTitle: req.VariantTitle,
		ProductImage: absoluteImageURL(req.ProductImage),
		ProductURL:   fmt.Sprintf("https://%s/products/%s?variant=%s", req.StoreDomain, req.ProductHandle, req.VariantID),
		StoreName:    req.StoreDomain,
	}
	if data.Name == "" {
		data.Name = "Customer"
	}
	if data.ProductTitle == "" {
		data.ProductTitle = "Product"
	}

	var b strings.Builder
	if err := restockHTML.Execute(&b, data); err != nil {
		return "", "", err
	}
	return fmt.Sprintf("%s is back in stock!", data.ProductTitle), b.String(), nil
}

// absoluteImageURL fixes up protocol-relative CDN urls from product payloads.
func absoluteImageURL(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}
