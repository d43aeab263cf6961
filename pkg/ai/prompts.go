package ai

const ExtractConceptsPrompt = `
# Task Context
You are an experienced teacher building a **knowledge graph for studying** a document. The graph consists of the key concepts a learner must understand and the relations between them.

# Background Data
- **Document_name:** [%s]
- **Categories:** [%s]
- **Maximum_concepts:** %d

# Detailed Task Description & Rules
## Concept Extraction
1. Identify the most important concepts explained in the text. Prefer ideas, processes and entities over incidental words.
2. Extract at most **Maximum_concepts** concepts. Leave out minor details.
3. For each concept, extract:
   - **label:** a short noun phrase (1-4 words) in title case, e.g. "Cell Membrane".
   - **category:** exactly one of the provided categories.
     - core-concept: definitions, principles, theories.
     - process: methods, procedures, steps, algorithms.
     - entity: systems, components, structures, organisms.
     - property: attributes, characteristics, metrics.
     - example: cases, instances, applications.
   - **description:** one or two sentences explaining the concept as the text describes it.
   - **context:** a verbatim sentence from the text that mentions the concept (max 300 characters).
   - **socratic_question:** one open question that makes the learner reason about the concept instead of recalling it.

## Relation Extraction
1. Connect concepts that the text explicitly relates to each other.
2. For each relation, extract:
   - **source:** label of the source concept, exactly as written in the concept list.
   - **target:** label of the target concept, exactly as written in the concept list.
   - **label:** a short verb phrase, e.g. "regulates", "is part of", "produces".
   - **strength:** an integer from 1 to 10 (10 = the concepts are inseparable, 1 = loosely connected).
3. Never relate a concept to itself. Use each pair of concepts at most once.

# Thinking Step by Step
The text is a single section of the document and is provided as the user message. Read the text, list candidate concepts, keep the most important ones, then determine how they depend on each other.

# Output Formatting
The output must be a single valid JSON object in this structure:
{
  "concepts": [
    {
      "label": "string",
      "category": "string",
      "description": "string",
      "context": "string",
      "socratic_question": "string"
    }
  ],
  "relations": [
    {
      "source": "string",
      "target": "string",
      "label": "string",
      "strength": 5
    }
  ]
}
Do not include any commentary, explanations, or text outside of the JSON.
Always return valid JSON, even if no concepts are found (use empty arrays in that case).
`

const GradeAnswerPrompt = `
# Task Context
You are a fair and encouraging tutor grading a learner's answer to a question about a single concept.

# Background Data
- **Concept:** [%s]
- **Question:** [%s]
- **Source_context:** [%s]

# Detailed Task Description & Rules
- Judge how well the answer demonstrates understanding of the concept in light of the source context.
- Reward explanations of *why* and *how*, correct use of key terms and relevant examples.
- Do not reward length alone. Penalize answers that are off-topic or contradict the source.
- Give a **score** from 0 to 100. A score of 85 or more means the learner has mastered the concept.
- Give short **feedback** (1-3 sentences) addressed to the learner that names what is good and what is missing.

# Output Formatting
Return a single valid JSON object:
{
  "score": 0,
  "feedback": "string"
}
Do not include any text outside of the JSON.

# Answer
%s
`

const DedupeConceptsPrompt = `
# Task Context
You are cleaning up the concept list of a study knowledge graph. Several sections of the same document were processed independently, so the same concept may appear under slightly different labels.

# Detailed Task Description & Rules
- Group labels that name the **same** concept, e.g. singular and plural forms, abbreviations and their expansion, or spelling variants.
- Do not group concepts that are merely related (a process and its result, a part and the whole).
- Only use labels from the provided list, spelled exactly as given.
- For each group choose a **canonicalName**: the clearest label in title case.
- Labels without duplicates must not be returned.

# Output Formatting
Return a single valid JSON object:
{
  "duplicates": [
    {
      "canonicalName": "string",
      "concepts": ["string", "string"]
    }
  ]
}
Return an empty array if there are no duplicates.

# Data
%s
`
