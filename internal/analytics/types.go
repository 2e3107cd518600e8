package analytics

import (
	analyticsadmin "google.golang.org/api/analyticsadmin/v1beta"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
)

// Account represents an Analytics account
type Account struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	RegionCode  string `json:"region_code,omitempty"`
	CreateTime  string `json:"create_time,omitempty"`
	UpdateTime  string `json:"update_time,omitempty"`
}

// Property represents a GA4 property
type Property struct {
	Name             string `json:"name"`
	ID               string `json:"id"`
	DisplayName      string `json:"display_name"`
	Parent           string `json:"parent,omitempty"`
	TimeZone         string `json:"time_zone,omitempty"`
	CurrencyCode     string `json:"currency_code,omitempty"`
	IndustryCategory string `json:"industry_category,omitempty"`
	ServiceLevel     string `json:"service_level,omitempty"`
	CreateTime       string `json:"create_time,omitempty"`
	UpdateTime       string `json:"update_time,omitempty"`
}

// WebStreamData holds web-specific data stream detail
type WebStreamData struct {
	MeasurementID string `json:"measurement_id,omitempty"`
	DefaultURI    string `json:"default_uri,omitempty"`
	FirebaseAppID string `json:"firebase_app_id,omitempty"`
}

// AndroidStreamData holds Android-specific data stream detail
type AndroidStreamData struct {
	PackageName   string `json:"package_name,omitempty"`
	FirebaseAppID string `json:"firebase_app_id,omitempty"`
}

// IosStreamData holds iOS-specific data stream detail
type IosStreamData struct {
	BundleID      string `json:"bundle_id,omitempty"`
	FirebaseAppID string `json:"firebase_app_id,omitempty"`
}

// DataStream represents a data stream of a GA4 property
type DataStream struct {
	Name        string             `json:"name"`
	DisplayName string             `json:"display_name"`
	Type        string             `json:"type"`
	Web         *WebStreamData     `json:"web,omitempty"`
	Android     *AndroidStreamData `json:"android,omitempty"`
	Ios         *IosStreamData     `json:"ios,omitempty"`
	CreateTime  string             `json:"create_time,omitempty"`
	UpdateTime  string             `json:"update_time,omitempty"`
}

// DimensionInfo describes an available report dimension
type DimensionInfo struct {
	APIName          string `json:"api_name"`
	UIName           string `json:"ui_name,omitempty"`
	Description      string `json:"description,omitempty"`
	Category         string `json:"category,omitempty"`
	CustomDefinition bool   `json:"custom_definition,omitempty"`
}

// MetricInfo describes an available report metric
type MetricInfo struct {
	APIName          string `json:"api_name"`
	UIName           string `json:"ui_name,omitempty"`
	Description      string `json:"description,omitempty"`
	Category         string `json:"category,omitempty"`
	Type             string `json:"type,omitempty"`
	Expression       string `json:"expression,omitempty"`
	CustomDefinition bool   `json:"custom_definition,omitempty"`
}

// Metadata is the dimension and metric catalog of a property
type Metadata struct {
	Dimensions []DimensionInfo `json:"dimensions"`
	Metrics    []MetricInfo    `json:"metrics"`
}

// FieldCompatibility reports whether a single field is compatible with the
// rest of a report request
type FieldCompatibility struct {
	APIName       string `json:"api_name"`
	Compatibility string `json:"compatibility"`
}

// Compatibility is the result of a compatibility check
type Compatibility struct {
	Dimensions []FieldCompatibility `json:"dimensions"`
	Metrics    []FieldCompatibility `json:"metrics"`
}

// toAccount converts an Admin API account to our Account type
func toAccount(a *analyticsadmin.GoogleAnalyticsAdminV1betaAccount) Account {
	account := Account{
		Name:        a.Name,
		DisplayName: a.DisplayName,
		RegionCode:  a.RegionCode,
		CreateTime:  a.CreateTime,
		UpdateTime:  a.UpdateTime,
	}
	if id, err := ParseAccountID(a.Name); err == nil {
		account.ID = id[len("accounts/"):]
	}
	return account
}

// toProperty converts an Admin API property to our Property type
func toProperty(p *analyticsadmin.GoogleAnalyticsAdminV1betaProperty) Property {
	property := Property{
		Name:             p.Name,
		DisplayName:      p.DisplayName,
		Parent:           p.Parent,
		TimeZone:         p.TimeZone,
		CurrencyCode:     p.CurrencyCode,
		IndustryCategory: p.IndustryCategory,
		ServiceLevel:     p.ServiceLevel,
		CreateTime:       p.CreateTime,
		UpdateTime:       p.UpdateTime,
	}
	if number, err := PropertyNumber(p.Name); err == nil {
		property.ID = number
	}
	return property
}

// toDataStream converts an Admin API data stream to our DataStream type
func toDataStream(ds *analyticsadmin.GoogleAnalyticsAdminV1betaDataStream) DataStream {
	stream := DataStream{
		Name:        ds.Name,
		DisplayName: ds.DisplayName,
		Type:        ds.Type,
		CreateTime:  ds.CreateTime,
		UpdateTime:  ds.UpdateTime,
	}

	if ds.WebStreamData != nil {
		stream.Web = &WebStreamData{
			MeasurementID: ds.WebStreamData.MeasurementId,
			DefaultURI:    ds.WebStreamData.DefaultUri,
			FirebaseAppID: ds.WebStreamData.FirebaseAppId,
		}
	}
	if ds.AndroidAppStreamData != nil {
		stream.Android = &AndroidStreamData{
			PackageName:   ds.AndroidAppStreamData.PackageName,
			FirebaseAppID: ds.AndroidAppStreamData.FirebaseAppId,
		}
	}
	if ds.IosAppStreamData != nil {
		stream.Ios = &IosStreamData{
			BundleID:      ds.IosAppStreamData.BundleId,
			FirebaseAppID: ds.IosAppStreamData.FirebaseAppId,
		}
	}

	return stream
}

// toMetadata converts a Data API metadata response to our Metadata type
func toMetadata(m *analyticsdata.Metadata) *Metadata {
	metadata := &Metadata{}

	for _, d := range m.Dimensions {
		if d == nil {
			continue
		}
		metadata.Dimensions = append(metadata.Dimensions, DimensionInfo{
			APIName:          d.ApiName,
			UIName:           d.UiName,
			Description:      d.Description,
			Category:         d.Category,
			CustomDefinition: d.CustomDefinition,
		})
	}

	for _, met := range m.Metrics {
		if met == nil {
			continue
		}
		metadata.Metrics = append(metadata.Metrics, MetricInfo{
			APIName:          met.ApiName,
			UIName:           met.UiName,
			Description:      met.Description,
			Category:         met.Category,
			Type:             met.Type,
			Expression:       met.Expression,
			CustomDefinition: met.CustomDefinition,
		})
	}

	return metadata
}

// toCompatibility converts a compatibility response to our Compatibility type
func toCompatibility(resp *analyticsdata.CheckCompatibilityResponse) *Compatibility {
	result := &Compatibility{}

	for _, dc := range resp.DimensionCompatibilities {
		if dc == nil || dc.DimensionMetadata == nil {
			continue
		}
		result.Dimensions = append(result.Dimensions, FieldCompatibility{
			APIName:       dc.DimensionMetadata.ApiName,
			Compatibility: dc.Compatibility,
		})
	}

	for _, mc := range resp.MetricCompatibilities {
		if mc == nil || mc.MetricMetadata == nil {
			continue
		}
		result.Metrics = append(result.Metrics, FieldCompatibility{
			APIName:       mc.MetricMetadata.ApiName,
			Compatibility: mc.Compatibility,
		})
	}

	return result
}
