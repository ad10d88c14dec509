package mcpserver

// ArticleFormatContract describes the front-matter conventions recognized
// when articles are indexed. Published for LLM consumers so they know what
// the metadata fields mean.
const ArticleFormatContract = `# Skald Article Format

Articles are Markdown files with an optional front-matter block.

## Structure

` + "```" + `markdown
---
title: Human-readable title         # OPTIONAL – falls back to a title derived from the filename
category: Guides                    # OPTIONAL – also accepted as "section"
tags: [setup, go]                   # OPTIONAL – inline list or open (dash) list
updated: 2025-01-15                 # OPTIONAL – also accepted as "lastUpdated" or "date"
description: One-line summary       # OPTIONAL – falls back to an excerpt of the body
draft: true                         # OPTIONAL – drafts are excluded from the index
---

Body text in standard Markdown (GFM tables, strikethrough, task lists).
` + "```" + `

## Rules

1. The ` + "`" + `---` + "`" + ` fences must open the file for front matter to be recognized.
   Files without front matter are indexed with everything derived from the
   filename and body.
2. ` + "`" + `title` + "`" + ` missing: the filename stem is split on dashes and
   underscores and capitalized (` + "`" + `getting-started.md` + "`" + ` becomes "Getting Started").
3. Tags are matched case-insensitively; they are lowercased in the tag index.
4. An article is a draft when ` + "`" + `draft: true` + "`" + `, ` + "`" + `published: false` + "`" + `,
   or ` + "`" + `status: draft` + "`" + ` is present. Drafts never appear in listings and
   cannot be read through the API.
5. Scalar values may be quoted; a single matching layer of quotes is stripped.
6. Estimated read time is one minute per 200 words, minimum one minute.
`
