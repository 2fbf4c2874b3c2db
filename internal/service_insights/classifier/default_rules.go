package classifier

import spanModel "github.com/Avi18971911/Insights/internal/otel_server/trace/model"

const (
	EdgeServiceName    = "edge"
	GatewayServiceName = "gateway"
	MeshServiceName    = "service-mesh"

	EdgeRouteTag          = "edge.route"
	GatewayDestinationTag = "gateway.destination"
	DatacenterTag         = "app.datacenter"
	DatabaseTypeTag       = "db.type"
	SpanKindTag           = "span.kind"
	MergedSpanTag         = "X-HAYSTACK-IS-MERGED-SPAN"

	ClientSpanKind = "client"
)

// DefaultRules recognizes edge routers, gateways and a service mesh by service name, databases by
// the db.type tag and outbound calls by client spans that were not merged with their server side.
func DefaultRules() Rules {
	return Rules{
		Edge: {
			IsType:   serviceNameIs(EdgeServiceName),
			NodeId:   tagOr(EdgeRouteTag, serviceName),
			NodeName: tagOr(EdgeRouteTag, serviceName),
		},
		Gateway: {
			IsType:   serviceNameIs(GatewayServiceName),
			NodeId:   tagOr(GatewayDestinationTag, serviceName),
			NodeName: tagOr(DatacenterTag, serviceName),
		},
		Mesh: {
			IsType:   serviceNameIs(MeshServiceName),
			NodeId:   operationName,
			NodeName: operationName,
		},
		Database: {
			IsType:   func(span spanModel.Span) bool { return span.HasTag(DatabaseTypeTag) },
			NodeId:   operationName,
			NodeName: operationName,
			DatabaseType: func(span spanModel.Span) string {
				value, _ := span.Tag(DatabaseTypeTag)
				return value
			},
		},
		Outbound: {
			IsType: func(span spanModel.Span) bool {
				if span.HasTagValue(MergedSpanTag, "true") {
					return false
				}
				return span.HasTagValue(SpanKindTag, ClientSpanKind)
			},
			NodeId:   operationName,
			NodeName: operationName,
		},
		Service: {
			NodeId:   serviceName,
			NodeName: serviceName,
		},
	}
}

func serviceName(span spanModel.Span) string {
	return span.ServiceName
}

func operationName(span spanModel.Span) string {
	return span.OperationName
}

func serviceNameIs(name string) func(span spanModel.Span) bool {
	return func(span spanModel.Span) bool {
		return span.ServiceName == name
	}
}

func tagOr(key string, fallback func(span spanModel.Span) string) func(span spanModel.Span) string {
	return func(span spanModel.Span) string {
		if value, ok := span.Tag(key); ok {
			return value
		}
		return fallback(span)
	}
}
