// Package glshader carries the GPU rendition of the wireframe overlay: the
// same per-primitive/per-fragment algorithm as pkg/wireframe, expressed as a
// vertex/geometry/fragment GLSL program, plus a thin wrapper for compiling
// it and binding its uniforms.
//
// The classifier output travels through explicit geometry-to-fragment
// interpolators: the altitude slots are declared noperspective (linear in
// screen space), the line descriptors and case flags flat.
package glshader

// VertexSource transforms positions to clip space and passes the shading
// attributes through to the geometry stage.
const VertexSource = `#version 330 core

layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aUV;

uniform mat4 uModelViewProjection;

out VertexData {
	vec3 normal;
	vec2 uv;
} vOut;

void main() {
	gl_Position = uModelViewProjection * vec4(aPosition, 1.0);
	vOut.normal = aNormal;
	vOut.uv = aUV;
}
`

// GeometrySource is the per-primitive stage: it classifies the triangle's
// near-plane visibility, builds the screen-space edge geometry for the
// resulting case, and emits it alongside the unchanged vertices.
const GeometrySource = `#version 330 core

layout (triangles) in;
layout (triangle_strip, max_vertices = 3) out;

uniform mat3 uViewportMatrix;

in VertexData {
	vec3 normal;
	vec2 uv;
} vIn[];

out VertexData {
	vec3 normal;
	vec2 uv;
} vOut;

noperspective out vec3 gAltitudes;
flat out int gSimpleCase;
flat out int gSingleVisible;
flat out vec2 gA;
flat out vec2 gB;
flat out vec2 gADir;
flat out vec2 gBDir;
flat out vec2 gABDir;

// Vertex-index roles per visibility case (bit i set = vertex i in front of
// the near plane): the visible vertices A and B bounding the drawable
// edges and their invisible neighbors. First and last entries are unused
// sentinels for the fully clipped and fully visible cases.
const int caseA[8]      = int[8](-1, 0, 1, 0, 2, 0, 1, -1);
const int caseAPrime[8] = int[8](-1, 1, 0, 2, 0, 1, 0, -1);
const int caseB[8]      = int[8](-1, 0, 1, 1, 2, 2, 2, -1);
const int caseBPrime[8] = int[8](-1, 2, 2, 2, 1, 1, 0, -1);

// projectToScreen maps a clip-space position to pixels. Behind-camera
// vertices are not perspective-divided: dividing by their depth would
// mirror them through the viewport center.
vec2 projectToScreen(vec4 v) {
	if (v.z > 0.0) {
		return (uViewportMatrix * vec3(v.xy / v.w, 1.0)).xy;
	}
	return (uViewportMatrix * vec3(v.xy, 1.0)).xy;
}

// clippedEdgeDir recovers the screen direction of an edge whose far
// endpoint is behind the camera: step an infinitesimal amount toward the
// invisible neighbor in clip space, before division, then project.
vec2 clippedEdgeDir(vec4 visible, vec4 invisible, vec2 visibleScreen) {
	vec4 stepped = visible + 1.0e-4 * (invisible - visible);
	vec2 d = projectToScreen(stepped) - visibleScreen;
	float len = length(d);
	return len > 0.0 ? d / len : vec2(0.0);
}

float altitude(float area2, vec2 e0, vec2 e1) {
	float base = length(e1 - e0);
	return base > 0.0 ? area2 / base : 0.0;
}

void main() {
	int projCase = int(gl_in[0].gl_Position.z > 0.0)
	             | int(gl_in[1].gl_Position.z > 0.0) << 1
	             | int(gl_in[2].gl_Position.z > 0.0) << 2;

	// Fully clipped: contribute nothing, and never index the role tables.
	if (projCase == 0) {
		return;
	}

	vec3 altitudes = vec3(0.0);
	vec2 a = vec2(0.0);
	vec2 b = vec2(0.0);
	vec2 aDir = vec2(0.0);
	vec2 bDir = vec2(0.0);
	vec2 abDir = vec2(0.0);
	int simpleCase = int(projCase == 7);
	int singleVisible = int(projCase == 1 || projCase == 2 || projCase == 4);

	if (simpleCase == 1) {
		vec2 p0 = projectToScreen(gl_in[0].gl_Position);
		vec2 p1 = projectToScreen(gl_in[1].gl_Position);
		vec2 p2 = projectToScreen(gl_in[2].gl_Position);
		vec2 e01 = p1 - p0;
		vec2 e02 = p2 - p0;
		float area2 = abs(e01.x * e02.y - e01.y * e02.x);
		altitudes = vec3(
			altitude(area2, p1, p2),
			altitude(area2, p2, p0),
			altitude(area2, p0, p1));
	} else {
		vec4 clipA = gl_in[caseA[projCase]].gl_Position;
		vec4 clipB = gl_in[caseB[projCase]].gl_Position;
		a = projectToScreen(clipA);
		b = projectToScreen(clipB);
		aDir = clippedEdgeDir(clipA, gl_in[caseAPrime[projCase]].gl_Position, a);
		bDir = clippedEdgeDir(clipB, gl_in[caseBPrime[projCase]].gl_Position, b);
		if (singleVisible == 0) {
			vec2 ab = b - a;
			float len = length(ab);
			abDir = len > 0.0 ? ab / len : vec2(0.0);
		}
	}

	for (int i = 0; i < 3; ++i) {
		// Simple case: the vertex's own altitude with the other slots
		// zeroed, so interpolation hands each fragment its distance to
		// every edge.
		vec3 slots = vec3(0.0);
		slots[i] = altitudes[i];
		gAltitudes = slots;

		gSimpleCase = simpleCase;
		gSingleVisible = singleVisible;
		gA = a;
		gB = b;
		gADir = aDir;
		gBDir = bDir;
		gABDir = abDir;

		vOut.normal = vIn[i].normal;
		vOut.uv = vIn[i].uv;
		gl_Position = gl_in[i].gl_Position;
		EmitVertex();
	}
	EndPrimitive();
}
`

// FragmentSource is the per-fragment stage: shade the base color, evaluate
// the distance to the nearest polygon edge, and composite the wireframe
// overlay with a solid core and an exp2 fade band.
const FragmentSource = `#version 330 core

in VertexData {
	vec3 normal;
	vec2 uv;
} vIn;

noperspective in vec3 gAltitudes;
flat in int gSimpleCase;
flat in int gSingleVisible;
flat in vec2 gA;
flat in vec2 gB;
flat in vec2 gADir;
flat in vec2 gBDir;
flat in vec2 gABDir;

uniform vec4 uBaseColor;
uniform sampler2D uBaseTexture;
uniform bool uUseTexture;
uniform vec3 uLightDir;
uniform float uAlphaThreshold;

uniform bool uWireframeEnabled;
uniform vec4 uWireframeColor;
uniform float uLineWidth;
uniform float uFadeWidth;

out vec4 fragColor;

float distanceToLine(vec2 f, vec2 q, vec2 dir) {
	vec2 diff = q - f;
	float adjacent = dot(diff, dir);
	float sq = dot(diff, diff) - adjacent * adjacent;
	return sq > 0.0 ? sqrt(sq) : 0.0;
}

float distanceToNearestEdge() {
	if (gSimpleCase == 1) {
		return min(gAltitudes.x, min(gAltitudes.y, gAltitudes.z));
	}
	vec2 frag = gl_FragCoord.xy;
	float da = distanceToLine(frag, gA, gADir);
	float db = distanceToLine(frag, gB, gBDir);
	if (gSingleVisible == 1) {
		return min(da, db);
	}
	return min(min(da, db), distanceToLine(frag, gA, gABDir));
}

void main() {
	vec4 base = uBaseColor;
	if (uUseTexture) {
		base *= texture(uBaseTexture, vIn.uv);
	}
	float light = max(0.0, dot(normalize(vIn.normal), normalize(uLightDir)));
	base.rgb *= 0.3 + 0.7 * light;

	if (!uWireframeEnabled) {
		if (base.a < uAlphaThreshold) {
			discard;
		}
		fragColor = base;
		return;
	}

	float dist = distanceToNearestEdge();
	float solid = uLineWidth - uFadeWidth;
	if (dist < solid) {
		fragColor = uWireframeColor;
	} else if (dist < uLineWidth) {
		float t = dist - solid;
		float s = exp2(-2.0 * t * t);
		// A base fragment below its discard threshold fades into
		// transparency, not into its dead color.
		vec4 from = base.a < uAlphaThreshold ? vec4(0.0) : base;
		fragColor = mix(from, uWireframeColor, s);
	} else {
		if (base.a < uAlphaThreshold) {
			discard;
		}
		fragColor = base;
	}
}
`
