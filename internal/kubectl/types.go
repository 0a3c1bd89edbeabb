package kubectl

import metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

// Secret is the subset of `kubectl get secret -o json` output the fetcher
// reads. Data values stay base64 encoded.
type Secret struct {
	metav1.TypeMeta `json:",inline"`
	Metadata        metav1.ObjectMeta `json:"metadata"`
	Type            string            `json:"type,omitempty"`
	Data            map[string]string `json:"data,omitempty"`
}
