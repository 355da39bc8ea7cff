package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakh/lectograph/internal/model"
)

// Renderer writes the assembled document to its output formats
type Renderer struct{}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderJSON writes the document as indented JSON; the format round-trips
// losslessly through json.Unmarshal.
func (r *Renderer) RenderJSON(doc *model.Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// RenderMarkdown writes a study outline: core arguments, logic chains, the
// topic tree and the full transcript.
func (r *Renderer) RenderMarkdown(doc *model.Document, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# 讲座结构分析\n\n")
	fmt.Fprintf(&b, "- Source: `%s`\n", doc.SourceFile)
	fmt.Fprintf(&b, "- Duration: %.1fs\n", doc.TotalDuration())
	fmt.Fprintf(&b, "- Segments: %d\n", doc.SegmentCount())
	fmt.Fprintf(&b, "- Generated: %s\n\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))

	if core := doc.CoreArguments(); len(core) > 0 {
		b.WriteString("## 核心论点\n\n")
		for _, seg := range core {
			fmt.Fprintf(&b, "- **[%s]** %s\n", seg.FormatTimestamp(), seg.Text)
		}
		b.WriteString("\n")
	}

	if len(doc.LogicChains) > 0 {
		b.WriteString("## 逻辑链\n\n")
		for _, chain := range doc.LogicChains {
			fmt.Fprintf(&b, "### %s (%s)\n\n", chain.ChainID, chain.ChainType)
			if chain.Description != "" {
				fmt.Fprintf(&b, "%s\n\n", chain.Description)
			}
			for _, id := range chain.Segments {
				if seg := doc.SegmentByID(id); seg != nil {
					fmt.Fprintf(&b, "1. [%s] %s\n", seg.FormatTimestamp(), seg.Text)
				}
			}
			b.WriteString("\n")
		}
	}

	if !doc.TopicTree.IsEmpty() {
		b.WriteString("## 主题树\n\n")
		fmt.Fprintf(&b, "- %s\n", doc.TopicTree.MainTopic)
		renderTopicNodes(&b, doc.TopicTree.Subtopics, 1)
		b.WriteString("\n")
	}

	b.WriteString("## 全文\n\n")
	for _, seg := range doc.Segments {
		marker := ""
		if seg.IsCoreArgument {
			marker = " ★"
		}
		fmt.Fprintf(&b, "**[%s]**%s %s\n\n", seg.FormatTimestamp(), marker, seg.Text)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

func renderTopicNodes(b *strings.Builder, nodes []model.TopicNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, node := range nodes {
		if len(node.Segments) > 0 {
			fmt.Fprintf(b, "%s- %s (%d 段)\n", indent, node.Name, len(node.Segments))
		} else {
			fmt.Fprintf(b, "%s- %s\n", indent, node.Name)
		}
		renderTopicNodes(b, node.Subtopics, depth+1)
	}
}

// RenderSummary prints a short result overview to stdout
func (r *Renderer) RenderSummary(doc *model.Document) {
	fmt.Printf("Document: %s\n", doc.SourceFile)
	fmt.Printf("  Duration:       %.1fs\n", doc.TotalDuration())
	fmt.Printf("  Segments:       %d\n", doc.SegmentCount())
	fmt.Printf("  Core arguments: %d\n", len(doc.CoreArguments()))
	fmt.Printf("  Logic chains:   %d\n", len(doc.LogicChains))
	fmt.Printf("  Topics:         %d\n", doc.Metadata["total_topics"])
}
