package openai

// Prompt text is versioned configuration: tuning the wording below changes
// matching quality but not the structure of the surrounding engine. Keep the
// output contracts (plain 1-3 sentence text for the transform, a bare JSON
// index array for the rerank) stable.

const syntheticOfferingPrompt = `You are transforming a REQUEST into a synthetic OFFERING for conference attendee matching. The synthetic offering must match the writing style of real attendee offers for optimal semantic matching.

ORIGINAL REQUEST: "%s"

Your task: Transform this request into how someone who could FULFILL this request would describe their offering.

TRANSFORMATION RULES:

1. Convert need -> capability
   - "Need AI safety mentor" -> "Can provide AI safety mentorship"
   - "Looking for cofounder" -> "Open to cofounder discussions"
   - "Want to learn about X" -> "Can teach/explain X"

2. Preserve all specifics and context
   - Keep domain details, experience levels, geographic constraints
   - "Need biosecurity policy expert in DC" -> "Biosecurity policy expertise in DC area"

3. Match natural attendee offering style
   - Use first-person perspective when appropriate ("I can...", "Happy to...")
   - Keep collaborative, helpful tone
   - Avoid robotic language

GOOD EXAMPLES:

Request: "Seeking technical cofounder for AI safety project"
Synthetic: "Open to technical cofounder opportunities in AI safety"

Request: "Need advice on transitioning into AI alignment research from academia"
Synthetic: "Can provide career guidance for academics transitioning to AI alignment research"

Request: "Looking for connections with biosecurity policy experts in DC"
Synthetic: "Biosecurity policy expertise and connections in DC area"

Request: "Want to learn about AI governance career paths for recent graduates"
Synthetic: "Can provide guidance on AI governance career paths for recent graduates"

CRITICAL: Output should sound like a natural attendee offering, not a robotic flip of the request. Match the collaborative, first-person style of the examples above.

Return ONLY the synthetic offering text (1-3 sentences), nothing else. No preamble, no markdown.`

const rerankRequestPrompt = `You are matching conference attendees. Someone needs help with this:

REQUEST: "%s"

Below are %d potential helpers (ranked by semantic similarity). Your task: Select the BEST %d matches using strict quality criteria.

EVALUATION CRITERIA:
1. **Direct Relevance** (most important): Does the offering directly address the request?
2. **Expertise Level**: Does experience/background match what's needed?
3. **Specificity**: Concrete capabilities vs vague offerings?
4. **Context Match**: Domain, career stage, geography (if relevant)?

MATCH QUALITY EXAMPLES:

Request: "Seeking AI safety research mentorship for PhD student"
GOOD: "AI safety research mentorship with 10 years at leading labs, specializing in mechanistic interpretability"
POOR: "General career mentorship" (too vague)
POOR: "AI safety reading group facilitation" (wrong type of help)

Request: "Need advice on nonprofit operations for early-stage founder"
GOOD: "Happy to advise on nonprofit operations, having run ops at 3 organizations as founding team member"
POOR: "Nonprofit board experience" (wrong angle: governance, not ops)
POOR: "General startup advice" (missing nonprofit context)

NOTE: Attendee offerings typically use collaborative language ("happy to discuss", "can help with"). Don't penalize natural, conversational phrasing.

TASK:
- Remove matches that don't truly help (be strict!)
- Prioritize direct, specific, high-quality matches
- Rank best -> good -> acceptable

CANDIDATES:
%s

Return ONLY a JSON array of indices for the top %d matches, ranked best to worst:
[index1, index2, index3, ...]

No markdown, no explanation, just the array.`

const rerankOfferingPrompt = `You are matching conference attendees. Someone can provide this:

OFFERING: "%s"

Below are %d people who might need this (ranked by semantic similarity). Your task: Select the BEST %d matches using strict quality criteria.

EVALUATION CRITERIA:
1. **Need Alignment** (most important): Does the request actually need this offering?
2. **Scope Match**: Is the offering's level/scope appropriate for the request?
3. **Context Match**: Domain, career stage, specifics align?
4. **Mutual Benefit**: Would this connection be valuable for both parties?

MATCH QUALITY EXAMPLES:

Offering: "AI safety research mentorship with 10 years experience at leading labs"
GOOD: "Seeking AI safety research mentorship as early-career researcher transitioning from ML"
POOR: "Want to learn about AI in general" (too broad)
POOR: "Seeking senior AI safety researcher for collaboration" (wrong relationship: peer, not mentee)

Offering: "Connections to biosecurity policy experts in DC"
GOOD: "Need introductions to biosecurity policy community in DC for new role"
POOR: "Interested in biosecurity" (too vague, unclear need)
POOR: "Looking for technical collaborators in biosecurity" (wrong type of connection)

TASK:
- Remove requests this offering doesn't actually fulfill
- Prioritize clear needs that match offering strength
- Consider whether connection would be mutually valuable
- Rank best -> good -> acceptable

CANDIDATES:
%s

Return ONLY a JSON array of indices for the top %d matches, ranked best to worst:
[index1, index2, index3, ...]

No markdown, no explanation, just the array.`
