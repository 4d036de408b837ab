// internal/services/render_service.go
package services

import "github.com/Corphon/DataVisualizer/internal/models"

// 折线图与柱状图的标记颜色
const (
	LineColor = "#4F46E5"
	BarColor  = "#6366F1"
)

// 画布尺寸
const (
	RenderHeight = 500
	RenderWidth  = 700
)

// ToRenderable 把 ChartSpec 映射为绘图库配置，未知类型返回 nil
func ToRenderable(spec *models.ChartSpec) *models.RenderConfig {
	if spec == nil {
		return nil
	}

	switch spec.ChartType {
	case models.ChartPie:
		return &models.RenderConfig{
			Data: []models.RenderTrace{{
				Type:                  models.ChartPie,
				Labels:                spec.Labels,
				Values:                spec.Values,
				TextInfo:              "label+percent",
				InsideTextOrientation: "radial",
			}},
			Layout: models.RenderLayout{
				Title:  titleOr(spec),
				Height: RenderHeight,
				Width:  RenderWidth,
				Margin: models.RenderMargin{T: 50, B: 50, L: 50, R: 50},
			},
		}

	case models.ChartLine, models.ChartBar:
		color := LineColor
		if spec.ChartType == models.ChartBar {
			color = BarColor
		}
		return &models.RenderConfig{
			Data: []models.RenderTrace{{
				Type:   spec.ChartType,
				X:      spec.X,
				Y:      spec.Y,
				Marker: &models.RenderMarker{Color: color},
			}},
			Layout: models.RenderLayout{
				Title:  titleOr(spec),
				XAxis:  &models.RenderAxis{Title: spec.XAxisTitle},
				YAxis:  &models.RenderAxis{Title: spec.YAxisTitle},
				Height: RenderHeight,
				Width:  RenderWidth,
				Margin: models.RenderMargin{T: 50, B: 80, L: 80, R: 50},
			},
		}
	}

	return nil
}

func titleOr(spec *models.ChartSpec) string {
	if spec.Title != "" {
		return spec.Title
	}
	return spec.ChartType.Title()
}
